package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/pagination"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
)

// Dispatch handles one JSON value and returns the response to write, or nil
// when nothing must be written: the value was a notification, or it was
// invalid and carried no recoverable id.
func (s *Server) Dispatch(ctx context.Context, raw json.RawMessage) *protocol.Response {
	env, err := protocol.DecodeEnvelope(raw)
	if err != nil {
		if env == nil || env.IsNotification() {
			s.logger.WithError(err).Warn("Dropping invalid message", logging.String("message", string(raw)))
			return nil
		}
		s.logger.WithError(err).Warn("Rejecting invalid request", logging.String("id", string(env.ID)))
		return mcperrors.ToJSONRPCResponse(mcperrors.InvalidRequest(invalidReason(err)), env.ID)
	}

	ctx, requestID := logging.EnsureRequestID(ctx, s.idGen)
	call := &Call{
		Method:    env.Method,
		ID:        env.ID,
		Params:    env.Params,
		RequestID: requestID,
	}

	result, err := s.handler(ctx, call)
	if call.IsNotification() {
		return nil
	}
	if err != nil {
		return mcperrors.ToJSONRPCResponse(err, env.ID)
	}

	resp, err := protocol.NewResponse(env.ID, result)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Encoding result failed", logging.String("method", call.Method))
		return mcperrors.ToJSONRPCResponse(mcperrors.InternalError("encode_result", err), env.ID)
	}
	return resp
}

func invalidReason(err error) string {
	return strings.TrimPrefix(err.Error(), protocol.ErrInvalidEnvelope.Error()+": ")
}

// route is the innermost HandleFunc. It recovers handler panics.
func (s *Server) route(ctx context.Context, call *Call) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithContext(ctx).Error("Recovered panic",
				logging.String("method", call.Method),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
			result, err = nil, mcperrors.HandlerPanic(call.Method, r)
		}
	}()

	switch call.Method {
	case protocol.MethodInitialize:
		return s.handleInitialize(ctx, call)
	case protocol.MethodInitialized, protocol.MethodInitializedNotification:
		return protocol.EmptyResult{}, nil
	case protocol.MethodPing:
		return protocol.EmptyResult{}, nil
	case protocol.MethodListTools:
		return s.handleListTools(ctx, call)
	case protocol.MethodCallTool:
		return s.handleCallTool(ctx, call)
	case protocol.MethodListResources:
		return s.handleListResources(ctx, call)
	case protocol.MethodReadResource:
		return s.handleReadResource(ctx, call)
	case protocol.MethodListPrompts:
		return s.handleListPrompts(ctx, call)
	case protocol.MethodGetPrompt:
		return s.handleGetPrompt(ctx, call)
	default:
		return nil, mcperrors.MethodNotFound(call.Method)
	}
}

func (s *Server) handleInitialize(ctx context.Context, call *Call) (interface{}, error) {
	log := s.logger.WithContext(ctx)

	var initParams protocol.InitializeParams
	if len(call.Params) > 0 {
		if err := json.Unmarshal(call.Params, &initParams); err != nil {
			log.WithError(err).Warn("Ignoring malformed initialize params")
			initParams = protocol.InitializeParams{}
		}
	}

	fields := []logging.Field{}
	if initParams.ProtocolVersion != "" {
		fields = append(fields, logging.String("client_protocol_version", initParams.ProtocolVersion))
	}
	if initParams.ClientInfo != nil {
		fields = append(fields,
			logging.String("client_name", initParams.ClientInfo.Name),
			logging.String("client_version", initParams.ClientInfo.Version),
		)
	}
	log.Info("Initializing connection", fields...)

	s.initializedLock.Lock()
	s.clientInfo = initParams.ClientInfo
	s.initialized = true
	s.initializedLock.Unlock()

	return &protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolRevision,
		Capabilities:    protocol.AllCapabilities(),
		ServerInfo: protocol.ServerInfo{
			Name:    s.name,
			Version: s.version,
		},
	}, nil
}

func (s *Server) handleListTools(ctx context.Context, call *Call) (interface{}, error) {
	var params protocol.ListToolsParams
	if err := decodeOptionalParams(call.Params, &params); err != nil {
		return nil, err
	}

	entries := s.registry.Entries(GroupTools)
	tools := make([]protocol.Tool, 0, len(entries))
	for _, e := range entries {
		tool := protocol.Tool{Name: e.Name}
		if d, ok := e.Handler.(ToolDescriber); ok {
			tool = d.Tool()
			tool.Name = e.Name
		}
		tools = append(tools, tool)
	}

	page, next, err := pagination.Page(tools, params.Cursor, s.pageSize)
	if err != nil {
		return nil, err
	}
	result := &protocol.ListToolsResult{Tools: page}
	result.NextCursor = next
	return result, nil
}

func (s *Server) handleCallTool(ctx context.Context, call *Call) (interface{}, error) {
	var params protocol.CallToolParams
	if err := decodeParams(call.Params, &params); err != nil {
		return nil, err
	}
	if err := requireMember(call.Params, "name"); err != nil {
		return nil, err
	}

	tool, ok := s.registry.Tool(params.Name)
	if !ok {
		return nil, mcperrors.HandlerNotFound("Tool", params.Name)
	}

	args := params.Arguments
	if isAbsent(args) {
		args = json.RawMessage("{}")
	}

	result, err := tool.Call(ctx, args)
	if err != nil {
		return nil, handlerFailure(params.Name, err)
	}
	if result == nil {
		result = protocol.NewToolResult()
	}
	return result, nil
}

func (s *Server) handleListResources(ctx context.Context, call *Call) (interface{}, error) {
	var params protocol.ListResourcesParams
	if err := decodeOptionalParams(call.Params, &params); err != nil {
		return nil, err
	}

	resources := []protocol.Resource{}
	for _, e := range s.registry.Entries(GroupResources) {
		lister, ok := e.Handler.(ResourceLister)
		if !ok {
			resources = append(resources, protocol.Resource{URI: e.Name})
			continue
		}
		listed, err := lister.ListResources(ctx)
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Skipping resource handler that failed to list",
				logging.String("handler", e.Name))
			continue
		}
		resources = append(resources, listed...)
	}

	page, next, err := pagination.Page(resources, params.Cursor, s.pageSize)
	if err != nil {
		return nil, err
	}
	result := &protocol.ListResourcesResult{Resources: page}
	result.NextCursor = next
	return result, nil
}

func (s *Server) handleReadResource(ctx context.Context, call *Call) (interface{}, error) {
	var params protocol.ReadResourceParams
	if err := decodeParams(call.Params, &params); err != nil {
		return nil, err
	}
	if err := requireMember(call.Params, "uri"); err != nil {
		return nil, err
	}

	resource, ok := s.registry.Resource(params.URI)
	if !ok {
		return nil, mcperrors.HandlerNotFound("Resource", params.URI)
	}

	result, err := resource.Read(ctx, params.URI)
	if err != nil {
		return nil, handlerFailure(params.URI, err)
	}
	if result == nil {
		result = &protocol.ReadResourceResult{Contents: []protocol.ResourceContents{}}
	}
	return result, nil
}

func (s *Server) handleListPrompts(ctx context.Context, call *Call) (interface{}, error) {
	var params protocol.ListPromptsParams
	if err := decodeOptionalParams(call.Params, &params); err != nil {
		return nil, err
	}

	entries := s.registry.Entries(GroupPrompts)
	prompts := make([]protocol.Prompt, 0, len(entries))
	for _, e := range entries {
		prompt := protocol.Prompt{Name: e.Name}
		if d, ok := e.Handler.(PromptDescriber); ok {
			prompt = d.Prompt()
			prompt.Name = e.Name
		}
		prompts = append(prompts, prompt)
	}

	page, next, err := pagination.Page(prompts, params.Cursor, s.pageSize)
	if err != nil {
		return nil, err
	}
	result := &protocol.ListPromptsResult{Prompts: page}
	result.NextCursor = next
	return result, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, call *Call) (interface{}, error) {
	var params protocol.GetPromptParams
	if err := decodeParams(call.Params, &params); err != nil {
		return nil, err
	}
	if err := requireMember(call.Params, "name"); err != nil {
		return nil, err
	}

	prompt, ok := s.registry.Prompt(params.Name)
	if !ok {
		return nil, mcperrors.HandlerNotFound("Prompt", params.Name)
	}

	args := params.Arguments
	if isAbsent(args) {
		args = nil
	}

	result, err := prompt.Get(ctx, args)
	if err != nil {
		return nil, handlerFailure(params.Name, err)
	}
	if result == nil {
		result = &protocol.GetPromptResult{Messages: []protocol.PromptMessage{}}
	}
	return result, nil
}

// decodeParams decodes required params into target.
func decodeParams(params json.RawMessage, target interface{}) error {
	if isAbsent(params) {
		return mcperrors.MissingParameter("params")
	}
	return decodeOptionalParams(params, target)
}

// decodeOptionalParams decodes params into target when present.
func decodeOptionalParams(params json.RawMessage, target interface{}) error {
	if isAbsent(params) {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return mcperrors.InvalidParameter(typeErr.Field, typeErr.Type.String())
		}
		return mcperrors.InvalidParamsf("Invalid params: %v", err)
	}
	return nil
}

// requireMember reports a missing or null member of already decoded params.
// An empty string is present and is looked up like any other name.
func requireMember(params json.RawMessage, name string) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(params, &members); err != nil {
		return mcperrors.InvalidParamsf("Invalid params: %v", err)
	}
	if raw, ok := members[name]; !ok || isAbsent(raw) {
		return mcperrors.MissingParameter(name)
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// handlerFailure keeps the kind of an MCPError returned by a handler and
// turns anything else into an internal failure carrying the handler's text.
func handlerFailure(name string, err error) error {
	if mcperrors.IsMCPError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return mcperrors.HandlerError(name, fmt.Errorf("handler interrupted: %w", err))
	}
	return mcperrors.HandlerError(name, err)
}
