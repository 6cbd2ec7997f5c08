package tus

import (
	"context"
	"encoding/json"
	"net/http"
)

// concatResponseBody is the shape of a successful concat response body:
// {"data":{"checksum":"..."}}.
type concatResponseBody struct {
	Data struct {
		Checksum string `json:"checksum"`
	} `json:"data"`
}

// Concat implements the Concatenation Coordinator (C7): it submits a
// Final Upload referencing the given partial keys, in the order given
// (significant, no deduplication), and returns the server's checksum of
// the concatenation verbatim. It does not verify that checksum locally;
// the partials may have been produced by other processes.
func (c *Client) Concat(ctx context.Context, finalKey string, partialKeys ...string) (string, error) {
	if len(partialKeys) == 0 {
		return "", &ConfigurationError{Reason: "concat requires at least one partial key"}
	}

	header := c.headerSet()
	header.Set(headerConcat, encodeConcatFinal(partialKeys))
	header.Set(headerKey, finalKey)

	resp, err := c.transport.Do(ctx, http.MethodPost, c.config.APIPath, header, nil, 0)
	if err != nil {
		return "", &ConnectionError{Err: err}
	}

	if resp.Status != http.StatusCreated {
		return "", &ResourceCreateError{Status: resp.Status, Body: resp.BodyStr}
	}

	var body concatResponseBody
	if err := json.Unmarshal([]byte(resp.BodyStr), &body); err != nil || body.Data.Checksum == "" {
		return "", &ResourceCreateError{Status: resp.Status, Body: resp.BodyStr}
	}

	c.logger.Debugf("tus: concatenated %d partials into %s, checksum %s", len(partialKeys), finalKey, body.Data.Checksum)

	return body.Data.Checksum, nil
}
