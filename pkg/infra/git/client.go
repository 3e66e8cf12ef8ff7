package git

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// Client drives the git command line against a single working tree
type Client struct {
	dir string
	bin string
}

// New returns a client for the working tree at dir. It fails when git is not in
// PATH or dir is not inside a git working tree.
func New(ctx context.Context, dir string) (*Client, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve repository path", goerr.V("dir", dir))
	}

	bin, err := exec.LookPath("git")
	if err != nil {
		return nil, goerr.Wrap(err, "git binary not found in PATH")
	}

	c := &Client{dir: abs, bin: bin}

	out, err := c.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, goerr.Wrap(err, "not a git working tree", goerr.V("dir", abs))
	}
	c.dir = strings.TrimSpace(string(out))

	return c, nil
}

// Dir returns the top level of the working tree
func (c *Client) Dir() string {
	return c.dir
}

// ListRefs lists branch and/or tag names, sorted by refname
func (c *Client) ListRefs(ctx context.Context, kind model.RefKind) ([]string, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	args := []string{"for-each-ref", "--format=%(refname)"}
	if kind == model.RefKindBranches || kind == model.RefKindAll {
		args = append(args, "refs/heads/")
	}
	if kind == model.RefKindTags || kind == model.RefKindAll {
		args = append(args, "refs/tags/")
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list refs", goerr.V("kind", string(kind)))
	}

	var refs []string
	for _, line := range splitLines(out) {
		name, ok := strings.CutPrefix(line, "refs/heads/")
		if !ok {
			name, _ = strings.CutPrefix(line, "refs/tags/")
		}
		refs = append(refs, name)
	}
	return refs, nil
}

// CurrentRef returns the checked out branch, or the commit SHA when HEAD is detached
func (c *Client) CurrentRef(ctx context.Context) (string, error) {
	if out, err := c.run(ctx, "symbolic-ref", "--quiet", "--short", "HEAD"); err == nil {
		return strings.TrimSpace(string(out)), nil
	}

	out, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve HEAD")
	}
	return strings.TrimSpace(string(out)), nil
}

// Checkout switches the working tree to ref
func (c *Client) Checkout(ctx context.Context, ref string) error {
	if _, err := c.run(ctx, "checkout", "--quiet", ref, "--"); err != nil {
		return goerr.Wrap(err, "failed to checkout ref", goerr.V("ref", ref))
	}
	return nil
}

// ListFiles lists files tracked at HEAD, relative to the top level
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "ls-files")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tracked files")
	}
	return splitLines(out), nil
}

// ReadFile reads name, relative to the top level, from the working tree
func (c *Client) ReadFile(ctx context.Context, name string) ([]byte, error) {
	path := filepath.Join(c.dir, filepath.FromSlash(name))
	if !strings.HasPrefix(path, filepath.Clean(c.dir)+string(os.PathSeparator)) {
		return nil, goerr.New("file is outside the working tree", goerr.V("file", name))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file from working tree", goerr.V("file", name))
	}
	return data, nil
}

// Archive runs git archive for ref and writes the result to output
func (c *Client) Archive(ctx context.Context, ref string, opts model.ArchiveOptions, output string) error {
	format := opts.Format
	if format == "" {
		format = model.DefaultArchiveType
	}

	output, err := filepath.Abs(output)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve archive path", goerr.V("output", output))
	}

	args := []string{"archive", "--format=" + format, "--output=" + output}
	if opts.Prefix != "" {
		args = append(args, "--prefix="+opts.Prefix)
	}
	args = append(args, ref)

	if _, err := c.run(ctx, args...); err != nil {
		return goerr.Wrap(err, "failed to archive ref",
			goerr.V("ref", ref),
			goerr.V("output", output),
		)
	}
	return nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	ctxlog.From(ctx).Debug("Running git", "args", args, "dir", c.dir)

	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Dir = c.dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, goerr.Wrap(err, "git command failed",
			goerr.V("args", args),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
		)
	}
	return out, nil
}

func splitLines(out []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
