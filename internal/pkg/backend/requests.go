package backend

import (
	"context"
	"net/http"
	"net/url"
)

// TenantFilter is the query parameter list endpoints filter tenants by.
const TenantFilter = "tenantId.equals"

// TenantQuery returns a copy of q with tenantId.equals added unless present.
func (c *Client) TenantQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	if out.Get(TenantFilter) == "" {
		out.Set(TenantFilter, c.tenantID)
	}
	return out
}

// WithTenantID sets tenantId on a JSON object body. The map is modified in
// place and returned.
func (c *Client) WithTenantID(body map[string]interface{}) map[string]interface{} {
	if body == nil {
		body = map[string]interface{}{}
	}
	body["tenantId"] = c.tenantID
	return body
}

// GetJSON fetches path with the tenant filter applied and decodes the body
// into out. It returns the X-Total-Count header, or -1 when absent.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) (int64, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: c.TenantQuery(query)})
	if err != nil {
		return 0, err
	}
	if err := resp.Decode(out); err != nil {
		return 0, err
	}
	return resp.TotalCount(-1), nil
}

// PostJSON posts body as JSON and decodes the response into out, if non-nil.
func (c *Client) PostJSON(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPost, path, query, body, out)
}

// PutJSON replaces a resource.
func (c *Client) PutJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPut, path, nil, body, out)
}

// PatchJSON sends a merge-patch body.
func (c *Client) PatchJSON(ctx context.Context, path string, body, out interface{}) error {
	return c.sendJSON(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete removes a resource, scoped to the tenant.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodDelete, Path: path, Query: c.TenantQuery(nil)})
	return err
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req := Request{Method: method, Path: path, Query: query, JSON: body}
	if body == nil {
		req.JSON = map[string]interface{}{}
	}
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
