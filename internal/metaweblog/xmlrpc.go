// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metaweblog implements the MetaWeblog XML-RPC API so desktop
// blog clients can manage posts.
package metaweblog

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// iso8601Layout is the classic XML-RPC date form. Clients vary, so parsing
// also accepts variants with dashes and an explicit zone.
const iso8601Layout = "20060102T15:04:05"

var iso8601ParseLayouts = []string{
	iso8601Layout,
	"20060102T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// fault is an XML-RPC fault. It travels to the client as a faultCode plus
// faultString struct.
type fault struct {
	Code    int
	Message string
}

func (f *fault) Error() string {
	return fmt.Sprintf("xmlrpc fault %d: %s", f.Code, f.Message)
}

func faultf(code int, format string, args ...any) *fault {
	return &fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// methodCall is the decoded request envelope.
type methodCall struct {
	XMLName    xml.Name   `xml:"methodCall"`
	MethodName string     `xml:"methodName"`
	Params     []xmlValue `xml:"params>param>value"`
}

// xmlValue mirrors the <value> element. Exactly one typed child is set; a
// value with no typed child is a bare string per the XML-RPC spec.
type xmlValue struct {
	Raw      string     `xml:",chardata"`
	String   *string    `xml:"string"`
	Int      *string    `xml:"int"`
	I4       *string    `xml:"i4"`
	Boolean  *string    `xml:"boolean"`
	Double   *string    `xml:"double"`
	DateTime *string    `xml:"dateTime.iso8601"`
	Base64   *string    `xml:"base64"`
	Struct   *xmlStruct `xml:"struct"`
	Array    *xmlArray  `xml:"array"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

// parseCall decodes a request body into the method name and its decoded
// parameters.
func parseCall(body []byte) (string, []any, error) {
	var call methodCall
	if err := xml.Unmarshal(body, &call); err != nil {
		return "", nil, faultf(-32700, "parse error: %v", err)
	}
	if call.MethodName == "" {
		return "", nil, faultf(-32600, "missing methodName")
	}

	params := make([]any, 0, len(call.Params))
	for _, v := range call.Params {
		decoded, err := decodeValue(v)
		if err != nil {
			return "", nil, err
		}
		params = append(params, decoded)
	}
	return call.MethodName, params, nil
}

// decodeValue maps a <value> element onto a Go value: string, int, bool,
// float64, time.Time, []byte, map[string]any or []any.
func decodeValue(v xmlValue) (any, error) {
	switch {
	case v.Struct != nil:
		out := make(map[string]any, len(v.Struct.Members))
		for _, m := range v.Struct.Members {
			decoded, err := decodeValue(m.Value)
			if err != nil {
				return nil, err
			}
			out[m.Name] = decoded
		}
		return out, nil

	case v.Array != nil:
		out := make([]any, 0, len(v.Array.Values))
		for _, av := range v.Array.Values {
			decoded, err := decodeValue(av)
			if err != nil {
				return nil, err
			}
			out = append(out, decoded)
		}
		return out, nil

	case v.String != nil:
		return *v.String, nil

	case v.Int != nil || v.I4 != nil:
		raw := v.Int
		if raw == nil {
			raw = v.I4
		}
		n, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil {
			return nil, faultf(-32700, "invalid int value %q", *raw)
		}
		return n, nil

	case v.Boolean != nil:
		return strings.TrimSpace(*v.Boolean) == "1", nil

	case v.Double != nil:
		f, err := strconv.ParseFloat(strings.TrimSpace(*v.Double), 64)
		if err != nil {
			return nil, faultf(-32700, "invalid double value %q", *v.Double)
		}
		return f, nil

	case v.DateTime != nil:
		raw := strings.TrimSpace(*v.DateTime)
		for _, layout := range iso8601ParseLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, faultf(-32700, "invalid dateTime value %q", raw)

	case v.Base64 != nil:
		data, err := base64.StdEncoding.DecodeString(strings.Map(dropSpace, *v.Base64))
		if err != nil {
			return nil, faultf(-32700, "invalid base64 value")
		}
		return data, nil

	default:
		// Untyped value: bare string.
		return strings.TrimSpace(v.Raw), nil
	}
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\n', '\r':
		return -1
	}
	return r
}

// encodeResponse renders a single-value method response.
func encodeResponse(result any) []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString("<methodResponse><params><param>")
	encodeValue(&sb, result)
	sb.WriteString("</param></params></methodResponse>")
	return []byte(sb.String())
}

// encodeFault renders a fault response.
func encodeFault(f *fault) []byte {
	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString("<methodResponse><fault>")
	encodeValue(&sb, map[string]any{
		"faultCode":   f.Code,
		"faultString": f.Message,
	})
	sb.WriteString("</fault></methodResponse>")
	return []byte(sb.String())
}

// member is an ordered struct field. Struct responses use an explicit
// member list so the output is deterministic.
type member struct {
	name  string
	value any
}

type structValue []member

func encodeValue(sb *strings.Builder, v any) {
	sb.WriteString("<value>")
	switch val := v.(type) {
	case string:
		sb.WriteString("<string>")
		xml.EscapeText(sb, []byte(val))
		sb.WriteString("</string>")
	case int:
		sb.WriteString("<int>" + strconv.Itoa(val) + "</int>")
	case bool:
		if val {
			sb.WriteString("<boolean>1</boolean>")
		} else {
			sb.WriteString("<boolean>0</boolean>")
		}
	case float64:
		sb.WriteString("<double>" + strconv.FormatFloat(val, 'f', -1, 64) + "</double>")
	case time.Time:
		sb.WriteString("<dateTime.iso8601>" + val.UTC().Format(iso8601Layout) + "</dateTime.iso8601>")
	case []byte:
		sb.WriteString("<base64>" + base64.StdEncoding.EncodeToString(val) + "</base64>")
	case structValue:
		sb.WriteString("<struct>")
		for _, m := range val {
			sb.WriteString("<member><name>")
			xml.EscapeText(sb, []byte(m.name))
			sb.WriteString("</name>")
			encodeValue(sb, m.value)
			sb.WriteString("</member>")
		}
		sb.WriteString("</struct>")
	case map[string]any:
		// Deterministic order for map faults: code before string.
		sb.WriteString("<struct>")
		for _, name := range []string{"faultCode", "faultString"} {
			if mv, ok := val[name]; ok {
				sb.WriteString("<member><name>" + name + "</name>")
				encodeValue(sb, mv)
				sb.WriteString("</member>")
			}
		}
		sb.WriteString("</struct>")
	case []any:
		sb.WriteString("<array><data>")
		for _, item := range val {
			encodeValue(sb, item)
		}
		sb.WriteString("</data></array>")
	case []string:
		sb.WriteString("<array><data>")
		for _, item := range val {
			encodeValue(sb, item)
		}
		sb.WriteString("</data></array>")
	case []structValue:
		sb.WriteString("<array><data>")
		for _, item := range val {
			encodeValue(sb, item)
		}
		sb.WriteString("</data></array>")
	default:
		sb.WriteString("<string></string>")
	}
	sb.WriteString("</value>")
}

// argument accessors: XML-RPC positions are fixed per method, so each
// helper faults on a missing or mistyped argument.

func stringArg(params []any, i int) (string, error) {
	if i >= len(params) {
		return "", faultf(-32602, "missing argument %d", i)
	}
	s, ok := params[i].(string)
	if !ok {
		return "", faultf(-32602, "argument %d: expected string", i)
	}
	return s, nil
}

func boolArg(params []any, i int) bool {
	if i >= len(params) {
		return false
	}
	switch v := params[i].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		return v == "1" || strings.EqualFold(v, "true")
	}
	return false
}

func intArg(params []any, i, fallback int) int {
	if i >= len(params) {
		return fallback
	}
	switch v := params[i].(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func structArg(params []any, i int) (map[string]any, error) {
	if i >= len(params) {
		return nil, faultf(-32602, "missing argument %d", i)
	}
	m, ok := params[i].(map[string]any)
	if !ok {
		return nil, faultf(-32602, "argument %d: expected struct", i)
	}
	return m, nil
}
