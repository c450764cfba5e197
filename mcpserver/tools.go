// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jongio/fileex/fileutil"
)

// Tool names.
const (
	ToolExists = "file_exists"
	ToolStat   = "file_stat"
	ToolRead   = "file_read"
	ToolWrite  = "file_write"
	ToolSearch = "file_search"
)

// Content encodings accepted by file_read and file_write.
const (
	EncodingText   = "text"
	EncodingBase64 = "base64"
)

// Entry types reported by file_exists and file_stat.
const (
	TypeFile      = "file"
	TypeDirectory = "directory"
	TypeOther     = "other"
	TypeNone      = "none"
)

// ExistsResult is the result of file_exists.
type ExistsResult struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Type   string `json:"type"`
}

// StatResult is the result of file_stat.
type StatResult struct {
	Path      string `json:"path"`
	Type      string `json:"type"`
	Size      uint64 `json:"size"`
	SizeHuman string `json:"sizeHuman"`
	Readable  bool   `json:"readable"`
	Writable  bool   `json:"writable"`
}

// ReadResult is the result of file_read.
type ReadResult struct {
	Path     string `json:"path"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	Size     int    `json:"size"`
}

// WriteResult is the result of file_write.
type WriteResult struct {
	Path         string `json:"path"`
	Mode         string `json:"mode"`
	BytesWritten int    `json:"bytesWritten"`
}

// SearchResult is the result of file_search.
type SearchResult struct {
	Path      string `json:"path"`
	Substring string `json:"substring"`
	Found     bool   `json:"found"`
	Count     int    `json:"count"`
}

func (s *Server) registerTools() {
	pathArg := mcp.WithString("path", mcp.Required(), mcp.Description("Path of the file."))

	s.mcp.AddTool(mcp.NewTool(ToolExists,
		mcp.WithDescription("Report whether a filesystem entry exists and its type."),
		pathArg,
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handle(ToolExists, s.fileExists))

	s.mcp.AddTool(mcp.NewTool(ToolStat,
		mcp.WithDescription("Report size, type and access permissions of a path."),
		pathArg,
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handle(ToolStat, s.fileStat))

	s.mcp.AddTool(mcp.NewTool(ToolRead,
		mcp.WithDescription("Read a whole file. Files over the configured read limit are rejected."),
		pathArg,
		mcp.WithString("encoding", mcp.Enum(EncodingText, EncodingBase64),
			mcp.Description("text (UTF-8, the default) or base64 for binary content.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handle(ToolRead, s.fileRead))

	s.mcp.AddTool(mcp.NewTool(ToolWrite,
		mcp.WithDescription("Write a whole file. Parent directories are not created."),
		pathArg,
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to write.")),
		mcp.WithString("encoding", mcp.Enum(EncodingText, EncodingBase64),
			mcp.Description("Encoding of content: text (default) or base64.")),
		mcp.WithString("mode", mcp.Enum("truncate", "append"),
			mcp.Description("truncate (default) replaces the file, append adds to its end.")),
		mcp.WithDestructiveHintAnnotation(true),
	), s.handle(ToolWrite, s.fileWrite))

	s.mcp.AddTool(mcp.NewTool(ToolSearch,
		mcp.WithDescription("Count occurrences of a substring in a text file."),
		pathArg,
		mcp.WithString("substring", mcp.Required(), mcp.Description("Text to look for.")),
		mcp.WithBoolean("case_sensitive", mcp.Description("Match case exactly (default true).")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.handle(ToolSearch, s.fileSearch))
}

// requirePath extracts and confines the path argument.
func (s *Server) requirePath(req mcp.CallToolRequest) (string, error) {
	raw, err := req.RequireString("path")
	if err != nil {
		return "", &argError{err: err}
	}
	return s.resolvePath(raw)
}

func entryType(path string) string {
	switch {
	case fileutil.IsRegularFile(path):
		return TypeFile
	case fileutil.IsDirectory(path):
		return TypeDirectory
	case fileutil.Exists(path):
		return TypeOther
	default:
		return TypeNone
	}
}

func (s *Server) fileExists(_ context.Context, req mcp.CallToolRequest) (interface{}, error) {
	path, err := s.requirePath(req)
	if err != nil {
		return nil, err
	}
	typ := entryType(path)
	return ExistsResult{Path: path, Exists: typ != TypeNone, Type: typ}, nil
}

func (s *Server) fileStat(_ context.Context, req mcp.CallToolRequest) (interface{}, error) {
	path, err := s.requirePath(req)
	if err != nil {
		return nil, err
	}

	result := StatResult{Path: path, Type: entryType(path)}
	if result.Type != TypeDirectory {
		out, err := s.execute(func() (interface{}, error) { return fileutil.FileSize(path) })
		if err != nil {
			return nil, err
		}
		result.Size = out.(uint64)
	}
	result.SizeHuman = humanize.IBytes(result.Size)
	result.Readable = fileutil.IsReadable(path)
	result.Writable = fileutil.IsWritable(path)
	return result, nil
}

func (s *Server) fileRead(_ context.Context, req mcp.CallToolRequest) (interface{}, error) {
	path, err := s.requirePath(req)
	if err != nil {
		return nil, err
	}
	encoding := req.GetString("encoding", EncodingText)

	switch encoding {
	case EncodingText:
		out, err := s.execute(func() (interface{}, error) { return fileutil.ReadTextFile(path, s.readOpts...) })
		if err != nil {
			return nil, err
		}
		content := out.(string)
		return ReadResult{Path: path, Encoding: encoding, Content: content, Size: len(content)}, nil
	case EncodingBase64:
		out, err := s.execute(func() (interface{}, error) { return fileutil.ReadBinaryFile(path, s.readOpts...) })
		if err != nil {
			return nil, err
		}
		data := out.([]byte)
		return ReadResult{Path: path, Encoding: encoding, Content: base64.StdEncoding.EncodeToString(data), Size: len(data)}, nil
	default:
		return nil, &argError{err: fmt.Errorf("invalid encoding %q (valid options: text, base64)", encoding)}
	}
}

func (s *Server) fileWrite(_ context.Context, req mcp.CallToolRequest) (interface{}, error) {
	path, err := s.requirePath(req)
	if err != nil {
		return nil, err
	}
	content, err := req.RequireString("content")
	if err != nil {
		return nil, &argError{err: err}
	}
	mode, err := fileutil.ParseWriteMode(req.GetString("mode", ""))
	if err != nil {
		return nil, &argError{err: err}
	}

	var data []byte
	switch encoding := req.GetString("encoding", EncodingText); encoding {
	case EncodingText:
		data = []byte(content)
	case EncodingBase64:
		data, err = base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, &argError{err: fmt.Errorf("content is not valid base64: %w", err)}
		}
	default:
		return nil, &argError{err: fmt.Errorf("invalid encoding %q (valid options: text, base64)", encoding)}
	}

	if _, err := s.execute(func() (interface{}, error) {
		return nil, fileutil.WriteFile(path, data, mode, s.writeOpts...)
	}); err != nil {
		return nil, err
	}
	return WriteResult{Path: path, Mode: mode.String(), BytesWritten: len(data)}, nil
}

func (s *Server) fileSearch(_ context.Context, req mcp.CallToolRequest) (interface{}, error) {
	path, err := s.requirePath(req)
	if err != nil {
		return nil, err
	}
	substr, err := req.RequireString("substring")
	if err != nil {
		return nil, &argError{err: err}
	}
	caseSensitive := req.GetBool("case_sensitive", true)

	out, err := s.execute(func() (interface{}, error) {
		return fileutil.CountStringInFile(path, substr, caseSensitive, s.readOpts...)
	})
	if err != nil {
		return nil, err
	}
	count := out.(int)
	return SearchResult{Path: path, Substring: substr, Found: count > 0, Count: count}, nil
}
