package tus

import (
	"context"
	"net/http"
)

// Delete issues DELETE <apiPath>/<key>. A 404 or 410 response surfaces as
// NotFoundError; any other client error propagates as ProtocolError.
// Success, and any other status, is treated as "the resource no longer
// exists on the server" and the local cache record is dropped.
func (c *Client) Delete(ctx context.Context, key string) error {
	resp, err := c.transport.Do(ctx, http.MethodDelete, c.config.APIPath+"/"+key, c.headerSet(), nil, 0)
	if err != nil {
		return &ConnectionError{Err: err}
	}

	switch {
	case resp.Status == http.StatusNotFound, resp.Status == http.StatusGone:
		c.cache.Delete(key)
		return &NotFoundError{Key: key}
	case resp.Status >= 400 && resp.Status < 500:
		return &ProtocolError{Status: resp.Status, Body: resp.BodyStr}
	default:
		c.cache.Delete(key)
		return nil
	}
}
