// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jongio/fileex/cliout"
	"github.com/jongio/fileex/fileutil"
	"github.com/jongio/fileex/mcpserver"
	"github.com/jongio/fileex/security"
)

// pathArg validates a path taken from the command line. The user may name
// any path they could reach from a shell, ".." included.
func pathArg(arg string) (string, error) {
	if err := security.ValidatePathSyntax(arg); err != nil {
		return "", fmt.Errorf("invalid path %q: %w", arg, err)
	}
	return arg, nil
}

func entryType(path string) string {
	switch {
	case fileutil.IsRegularFile(path):
		return mcpserver.TypeFile
	case fileutil.IsDirectory(path):
		return mcpserver.TypeDirectory
	case fileutil.Exists(path):
		return mcpserver.TypeOther
	default:
		return mcpserver.TypeNone
	}
}

func (a *app) newExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists PATH",
		Short: "Report whether a path exists",
		Long:  "Prints true or false and the entry type. Exits 0 in both cases.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathArg(args[0])
			if err != nil {
				return err
			}
			typ := entryType(path)
			result := mcpserver.ExistsResult{Path: path, Exists: typ != mcpserver.TypeNone, Type: typ}
			return cliout.Print(result, func() {
				if result.Exists {
					cliout.Plain("true %s", cliout.Muted("(%s)", typ))
					return
				}
				cliout.Plain("false")
			})
		},
	}
}

func (a *app) newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat PATH",
		Short: "Show size, type and access of a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathArg(args[0])
			if err != nil {
				return err
			}

			result := mcpserver.StatResult{Path: path, Type: entryType(path)}
			if result.Type != mcpserver.TypeDirectory {
				size, err := fileutil.FileSize(path)
				if err != nil {
					return err
				}
				result.Size = size
			}
			result.SizeHuman = humanize.IBytes(result.Size)
			result.Readable = fileutil.IsReadable(path)
			result.Writable = fileutil.IsWritable(path)

			return cliout.Print(result, func() {
				cliout.Header(path)
				cliout.Label("Type", cliout.Status(result.Type))
				cliout.Label("Size", fmt.Sprintf("%s (%d bytes)", result.SizeHuman, result.Size))
				cliout.Label("Readable", cliout.Bool(result.Readable))
				cliout.Label("Writable", cliout.Bool(result.Writable))
			})
		},
	}
}

func (a *app) newReadCmd() *cobra.Command {
	var binary bool
	cmd := &cobra.Command{
		Use:   "read PATH",
		Short: "Print the whole content of a file",
		Long: `Prints the file content to stdout unchanged.

Text mode fails on invalid UTF-8; --binary copies raw bytes. With --output json
the content is wrapped in an object, base64-encoded for --binary.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathArg(args[0])
			if err != nil {
				return err
			}

			if binary {
				data, err := fileutil.ReadBinaryFile(path, a.cfg.ReadOptions()...)
				if err != nil {
					return err
				}
				if cliout.IsJSON() {
					return cliout.PrintJSON(mcpserver.ReadResult{
						Path:     path,
						Encoding: mcpserver.EncodingBase64,
						Content:  base64.StdEncoding.EncodeToString(data),
						Size:     len(data),
					})
				}
				_, err = os.Stdout.Write(data)
				return err
			}

			content, err := fileutil.ReadTextFile(path, a.cfg.ReadOptions()...)
			if err != nil {
				return err
			}
			if cliout.IsJSON() {
				return cliout.PrintJSON(mcpserver.ReadResult{
					Path:     path,
					Encoding: mcpserver.EncodingText,
					Content:  content,
					Size:     len(content),
				})
			}
			_, err = io.WriteString(os.Stdout, content)
			return err
		},
	}
	cmd.Flags().BoolVar(&binary, "binary", false, "read raw bytes without UTF-8 validation")
	return cmd
}

func (a *app) newWriteCmd() *cobra.Command {
	var (
		appendMode bool
		content    string
		sync       bool
	)
	cmd := &cobra.Command{
		Use:   "write PATH",
		Short: "Write content to a file",
		Long: `Writes --content, or stdin when --content is not given, to PATH.

The file is replaced unless --append is set. Missing parent directories are
not created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathArg(args[0])
			if err != nil {
				return err
			}

			var data []byte
			if cmd.Flags().Changed("content") {
				data = []byte(content)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			mode := fileutil.Truncate
			if appendMode {
				mode = fileutil.Append
			}
			opts := a.cfg.WriteOptions()
			if sync {
				opts = append(opts, fileutil.WithSync())
			}
			if err := fileutil.WriteFile(path, data, mode, opts...); err != nil {
				return err
			}

			result := mcpserver.WriteResult{Path: path, Mode: mode.String(), BytesWritten: len(data)}
			return cliout.Print(result, func() {
				cliout.Success("Wrote %s to %s (%s)", humanize.IBytes(uint64(len(data))), path, mode)
			})
		},
	}
	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "append instead of replacing the file")
	cmd.Flags().StringVarP(&content, "content", "c", "", "content to write (default: read stdin)")
	cmd.Flags().BoolVar(&sync, "sync", false, "flush to stable storage before returning")
	return cmd
}

func (a *app) newSearchCmd() *cobra.Command {
	var (
		ignoreCase bool
		count      bool
	)
	cmd := &cobra.Command{
		Use:   "search PATH SUBSTRING",
		Short: "Check whether a text file contains a substring",
		Long:  "Prints true or false, or the number of non-overlapping occurrences with --count.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathArg(args[0])
			if err != nil {
				return err
			}
			substr := args[1]

			n, err := fileutil.CountStringInFile(path, substr, !ignoreCase, a.cfg.ReadOptions()...)
			if err != nil {
				return err
			}

			result := mcpserver.SearchResult{Path: path, Substring: substr, Found: n > 0, Count: n}
			return cliout.Print(result, func() {
				if count {
					cliout.Plain("%d", n)
					return
				}
				cliout.Plain("%t", result.Found)
			})
		},
	}
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "match case-insensitively")
	cmd.Flags().BoolVar(&count, "count", false, "print the number of occurrences")
	return cmd
}
