/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"scenedoc/internal/scene"
)

// Client is a minimal HTTP client for the thin scene-sync API. The desktop
// app uses it under a feature flag; sync is never on the critical path.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new backend client. baseURL may include a trailing
// slash; it will be normalized.
func NewClient(baseURL string, token string) *Client {
	b := strings.TrimRight(baseURL, "/")
	return &Client{
		BaseURL: b,
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// ListScenes returns the stored scenes (read-only projection).
func (c *Client) ListScenes(ctx context.Context) ([]SceneInfo, error) {
	var list []SceneInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/scenes", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// FetchScene fetches the stored payload for a node key.
func (c *Client) FetchScene(ctx context.Context, nodeKey string) (*SceneEnvelope, error) {
	var env SceneEnvelope
	path := "/api/scenes/" + url.PathEscape(nodeKey)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// PushScene uploads a scene record's serialized form.
func (c *Client) PushScene(ctx context.Context, docID string, rec *scene.Record) error {
	env := SceneEnvelope{
		DocID:   docID,
		NodeKey: rec.Key,
		Scene:   rec.ExportSerialized(),
	}
	path := "/api/scenes/" + url.PathEscape(rec.Key)
	return c.doJSON(ctx, http.MethodPut, path, env, nil)
}
