// Package pagination provides cursor handling for the list methods.
//
// Cursors are opaque to clients. A list result carries nextCursor while more
// items remain; passing it back as params.cursor returns the next page:
//
//	page, next, err := pagination.Page(tools, params.Cursor, pagination.DefaultLimit)
//	if err != nil {
//	    return nil, err // invalid params
//	}
//	result := &protocol.ListToolsResult{Tools: page}
//	result.NextCursor = next
package pagination
