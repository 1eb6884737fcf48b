package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/polytree/internal/sample"
	"github.com/matzehuels/polytree/pkg/errors"
	"github.com/matzehuels/polytree/pkg/pipeline"
)

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// readInput returns the input named by args for kind along with a display
// name. No argument selects the embedded sample and "-" reads stdin.
func readInput(args []string, kind string) ([]byte, string, error) {
	if len(args) == 0 {
		return sample.For(kind), "sample " + kind, nil
	}
	path := args[0]
	if path == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, errors.MaxInputSize+1))
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", path, err)
	}
	if err := errors.ValidateInputSize(int(info.Size())); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, path, nil
}

// outputBase derives the base output path. An explicit output wins, with a
// known format extension stripped; otherwise the input file name is used,
// or the kind for samples and stdin.
func outputBase(output string, args []string, kind string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if len(args) == 0 || args[0] == "-" {
		return kind
	}
	return strings.TrimSuffix(args[0], filepath.Ext(args[0]))
}
