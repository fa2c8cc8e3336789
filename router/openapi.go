/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package router

import (
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	OpenAPI string                     `json:"openapi" yaml:"openapi"`
	Info    openAPIInfo                `json:"info" yaml:"info"`
	Servers []openAPIServer            `json:"servers,omitempty" yaml:"servers,omitempty"`
	Tags    []openAPITag               `json:"tags,omitempty" yaml:"tags,omitempty"`
	Paths   map[string]openAPIPathItem `json:"paths" yaml:"paths"`
}

type openAPIInfo struct {
	Title   string `json:"title" yaml:"title"`
	Version string `json:"version" yaml:"version"`
}

type openAPIServer struct {
	URL string `json:"url" yaml:"url"`
}

type openAPITag struct {
	Name string `json:"name" yaml:"name"`
}

type openAPIPathItem map[string]openAPIOperation

type openAPIOperation struct {
	Summary     string                     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags        []string                   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deprecated  bool                       `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Parameters  []openAPIParameter         `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Responses   map[string]openAPIResponse `json:"responses" yaml:"responses"`
}

type openAPIParameter struct {
	Name        string `json:"name" yaml:"name"`
	In          string `json:"in" yaml:"in"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

type openAPIResponse struct {
	Description string `json:"description" yaml:"description"`
}

// Info describes the OpenAPI document's info object and, together with
// Servers, is supplied by the caller at emission time rather than per-route.
type Info struct {
	Title   string
	Version string
	Servers []string
}

func (m *Manager) buildDocument(info Info) openAPIDoc {
	doc := openAPIDoc{
		OpenAPI: "3.0.0",
		Info:    openAPIInfo{Title: info.Title, Version: info.Version},
		Paths:   make(map[string]openAPIPathItem),
	}
	for _, s := range info.Servers {
		doc.Servers = append(doc.Servers, openAPIServer{URL: s})
	}

	seenTag := make(map[string]bool)
	for _, r := range m.routes {
		key := m.basePath + r.pattern

		item, ok := doc.Paths[key]
		if !ok {
			item = openAPIPathItem{}
		}

		op := openAPIOperation{
			Summary:    r.summary,
			Deprecated: r.deprecated,
			Responses:  make(map[string]openAPIResponse),
		}
		if r.tag != "" {
			op.Tags = []string{r.tag}
			if !seenTag[r.tag] {
				seenTag[r.tag] = true
				doc.Tags = append(doc.Tags, openAPITag{Name: r.tag})
			}
		}
		for _, p := range r.params {
			op.Parameters = append(op.Parameters, openAPIParameter{
				Name:        p.Name,
				In:          p.In,
				Description: p.Description,
				Required:    p.Required,
			})
		}
		for _, resp := range r.responses {
			op.Responses[strconv.Itoa(resp.Code)] = openAPIResponse{Description: resp.Description}
		}

		item[strings.ToLower(r.method)] = op
		doc.Paths[key] = item
	}

	return doc
}

// OpenAPIJSON renders the route table as an indented OpenAPI 3.0.0 JSON
// document.
func (m *Manager) OpenAPIJSON(info Info) ([]byte, error) {
	return json.MarshalIndent(m.buildDocument(info), "", "  ")
}

// OpenAPIYAML renders the same document as YAML. yaml.v3's encoder already
// applies the quoting rules reserved words and numeric-looking scalars
// need (e.g. a tag literally named "yes" or "123" comes out quoted), so no
// bespoke serialiser is needed here.
func (m *Manager) OpenAPIYAML(info Info) ([]byte, error) {
	return yaml.Marshal(m.buildDocument(info))
}
