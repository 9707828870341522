//go:build windows
// +build windows

package preview

import "context"

const (
	DefaultPTYRows = 24
	DefaultPTYCols = 80
)

// PTYRunner falls back to plain pipes on Windows.
type PTYRunner struct {
	ShellRunner
	Rows uint16
	Cols uint16
}

func (r *PTYRunner) Run(ctx context.Context, command string) (Result, error) {
	return r.ShellRunner.Run(ctx, command)
}
