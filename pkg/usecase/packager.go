package usecase

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/domain/interfaces"
	"github.com/m-mizutani/tagpack/pkg/domain/model"
)

// Packager archives every version ref of a repository and publishes a release
// descriptor for each
type Packager struct {
	repo        interfaces.GitRepository
	archives    interfaces.Store
	descriptors interfaces.Store
	notifier    interfaces.Notifier
	matcher     *model.RefMatcher

	refKind         model.RefKind
	mainline        string
	infoFile        string
	releaseBaseURL  string
	downloadBaseURL string
	projectLink     string
	creator         string
	projectType     string
	status          string
	projectTerms    []model.Term
	releaseTerms    []model.Term
	indent          string
	now             func() time.Time

	// mu serializes runs; the working tree is shared process state
	mu      sync.Mutex
	running atomic.Bool
}

// PackagerOption is a functional option for Packager configuration
type PackagerOption func(*Packager)

// WithRefKind selects branches, tags or both
func WithRefKind(kind model.RefKind) PackagerOption {
	return func(p *Packager) {
		p.refKind = kind
	}
}

// WithRefMatcher replaces the default version ref pattern
func WithRefMatcher(m *model.RefMatcher) PackagerOption {
	return func(p *Packager) {
		p.matcher = m
	}
}

// WithMainline sets the ref restored after each packaged ref. By default the
// ref checked out when the run starts is restored.
func WithMainline(ref string) PackagerOption {
	return func(p *Packager) {
		p.mainline = ref
	}
}

// WithInfoFile names the info file instead of detecting it
func WithInfoFile(name string) PackagerOption {
	return func(p *Packager) {
		p.infoFile = name
	}
}

// WithReleaseBaseURL sets the URL descriptors are served under
func WithReleaseBaseURL(u string) PackagerOption {
	return func(p *Packager) {
		p.releaseBaseURL = u
	}
}

// WithDownloadBaseURL sets the URL archives are served under
func WithDownloadBaseURL(u string) PackagerOption {
	return func(p *Packager) {
		p.downloadBaseURL = u
	}
}

// WithProjectLink sets the project link element
func WithProjectLink(u string) PackagerOption {
	return func(p *Packager) {
		p.projectLink = u
	}
}

// WithCreator sets dc:creator
func WithCreator(creator string) PackagerOption {
	return func(p *Packager) {
		p.creator = creator
	}
}

// WithProjectType sets the type element
func WithProjectType(t string) PackagerOption {
	return func(p *Packager) {
		p.projectType = t
	}
}

// WithStatus sets project and release status
func WithStatus(status string) PackagerOption {
	return func(p *Packager) {
		p.status = status
	}
}

// WithTerms sets the project and release terms. A nil slice keeps the defaults.
func WithTerms(projectTerms, releaseTerms []model.Term) PackagerOption {
	return func(p *Packager) {
		p.projectTerms = projectTerms
		p.releaseTerms = releaseTerms
	}
}

// WithIndent pretty-prints descriptors
func WithIndent(indent string) PackagerOption {
	return func(p *Packager) {
		p.indent = indent
	}
}

// WithNotifier announces each successful run
func WithNotifier(n interfaces.Notifier) PackagerOption {
	return func(p *Packager) {
		p.notifier = n
	}
}

// WithClock replaces time.Now for release dates
func WithClock(now func() time.Time) PackagerOption {
	return func(p *Packager) {
		p.now = now
	}
}

// NewPackager creates a Packager reading from repo and publishing into the stores
func NewPackager(
	repo interfaces.GitRepository,
	archives interfaces.Store,
	descriptors interfaces.Store,
	opts ...PackagerOption,
) (*Packager, error) {
	p := &Packager{
		repo:        repo,
		archives:    archives,
		descriptors: descriptors,
		refKind:     model.RefKindBranches,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if err := p.refKind.Validate(); err != nil {
		return nil, err
	}
	if p.matcher == nil {
		m, err := model.NewRefMatcher("")
		if err != nil {
			return nil, err
		}
		p.matcher = m
	}

	return p, nil
}

// Running reports whether a run is in progress
func (p *Packager) Running() bool {
	return p.running.Load()
}

// ListRefs returns the refs a run would package, in git's order
func (p *Packager) ListRefs(ctx context.Context) ([]string, error) {
	refs, err := p.repo.ListRefs(ctx, p.refKind)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list refs")
	}
	return p.matcher.Filter(refs), nil
}

// Run packages every matching ref in order. The first failure aborts the run;
// the mainline is restored after every ref whether it succeeded or not.
func (p *Packager) Run(ctx context.Context) ([]*model.ReleaseResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running.Store(true)
	defer p.running.Store(false)

	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID)
	ctx = ctxlog.With(ctx, logger)

	mainline := p.mainline
	if mainline == "" {
		current, err := p.repo.CurrentRef(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve current ref", goerr.V("run_id", runID))
		}
		mainline = current
	}

	refs, err := p.ListRefs(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to enumerate refs", goerr.V("run_id", runID))
	}
	if len(refs) == 0 {
		logger.Warn("No matching refs in this repository",
			"kind", p.refKind,
			"pattern", p.matcher.String(),
			"repository", p.repo.Dir(),
		)
		return nil, nil
	}

	logger.Info("Packaging refs",
		"refs", refs,
		"mainline", mainline,
		"repository", p.repo.Dir(),
	)

	results := make([]*model.ReleaseResult, 0, len(refs))
	for _, ref := range refs {
		result, err := p.packageRef(ctx, ref, mainline)
		if err != nil {
			logger.Error("Failed to package ref", "ref", ref, "error", err)
			return results, goerr.Wrap(err, "packaging aborted",
				goerr.V("ref", ref),
				goerr.V("run_id", runID),
			)
		}
		results = append(results, result)
	}

	if p.notifier != nil {
		if err := p.notifier.NotifyReleases(ctx, results); err != nil {
			logger.Error("Failed to notify releases", "error", err)
			return results, goerr.Wrap(err, "failed to notify releases", goerr.V("run_id", runID))
		}
	}

	logger.Info("Packaging completed", "releases", len(results))
	return results, nil
}

func (p *Packager) packageRef(ctx context.Context, ref, mainline string) (result *model.ReleaseResult, err error) {
	logger := ctxlog.From(ctx).With("ref", ref)

	if err := p.repo.Checkout(ctx, ref); err != nil {
		return nil, goerr.Wrap(err, "failed to checkout ref")
	}
	defer func() {
		// the working tree must return to mainline even when ctx was canceled mid-ref
		if restoreErr := p.repo.Checkout(context.WithoutCancel(ctx), mainline); restoreErr != nil {
			logger.Error("Failed to restore mainline", "mainline", mainline, "error", restoreErr)
			if err == nil {
				result = nil
				err = goerr.Wrap(restoreErr, "failed to restore mainline", goerr.V("mainline", mainline))
			}
		}
	}()

	info, infoFile, err := p.readInfo(ctx)
	if err != nil {
		return nil, err
	}
	rawVersion, version, err := model.ReleaseVersion(info, ref)
	if err != nil {
		return nil, err
	}
	shortName := info.ShortName()
	core := model.APIVersion(info, version)

	logger.Debug("Read module info",
		"file", infoFile,
		"name", info.Name,
		"version", rawVersion,
		"core", core,
	)

	archive, err := p.publishArchive(ctx, ref, shortName)
	if err != nil {
		return nil, err
	}

	links, err := p.links(shortName, core, archive.Key)
	if err != nil {
		return nil, err
	}

	now := p.now()
	project, err := model.BuildDescriptor(model.ReleaseInput{
		Info:         info,
		Ref:          ref,
		Archive:      archive,
		Links:        links,
		Creator:      p.creator,
		Type:         p.projectType,
		Status:       p.status,
		Timestamp:    now,
		ProjectTerms: p.projectTerms,
		ReleaseTerms: p.releaseTerms,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := model.EncodeDescriptor(&buf, project, p.indent); err != nil {
		return nil, err
	}

	descriptorKey := model.DescriptorKey(shortName, ref)
	if err := p.descriptors.Put(ctx, descriptorKey, &buf, model.DescriptorMediaType); err != nil {
		return nil, goerr.Wrap(err, "failed to store descriptor", goerr.V("key", descriptorKey))
	}

	logger.Info("Packaged release",
		"version", rawVersion,
		"archive", archive.Key,
		"descriptor", descriptorKey,
		"md5", archive.MD5,
		"size", archive.Size,
	)

	return &model.ReleaseResult{
		Ref:           ref,
		Version:       rawVersion,
		ShortName:     shortName,
		Core:          core,
		ArchiveKey:    archive.Key,
		DescriptorKey: descriptorKey,
		DownloadURL:   links.Download,
		MD5:           archive.MD5,
		Size:          archive.Size,
		Date:          now,
	}, nil
}

// readInfo reads the configured info file, or the first one at the top level
func (p *Packager) readInfo(ctx context.Context) (*model.ModuleInfo, string, error) {
	name := p.infoFile
	if name == "" {
		files, err := p.repo.ListFiles(ctx)
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to look for info file")
		}
		for _, f := range files {
			if !strings.Contains(f, "/") && model.IsInfoFile(f) {
				name = f
				break
			}
		}
		if name == "" {
			return nil, "", goerr.New("no info file at the top level of the ref")
		}
	}

	data, err := p.repo.ReadFile(ctx, name)
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to read info file", goerr.V("file", name))
	}

	info, err := model.ParseInfoFile(name, data)
	if err != nil {
		return nil, "", err
	}
	return info, name, nil
}

// publishArchive exports ref to a temporary file, digests it and stores it
func (p *Packager) publishArchive(ctx context.Context, ref, shortName string) (model.Archive, error) {
	tmpDir, err := os.MkdirTemp("", "tagpack-archive-*")
	if err != nil {
		return model.Archive{}, goerr.Wrap(err, "failed to create temporary directory")
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	path := filepath.Join(tmpDir, "snapshot."+model.DefaultArchiveType)
	opts := model.ArchiveOptions{
		Format: model.DefaultArchiveType,
		Prefix: shortName + "/",
	}
	if err := p.repo.Archive(ctx, ref, opts, path); err != nil {
		return model.Archive{}, goerr.Wrap(err, "failed to create archive")
	}

	sum, size, err := digestFile(path)
	if err != nil {
		return model.Archive{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Archive{}, goerr.Wrap(err, "failed to open archive", goerr.V("path", path))
	}
	defer f.Close()

	key := model.ArchiveKey(shortName, ref)
	if err := p.archives.Put(ctx, key, f, model.ArchiveMediaType); err != nil {
		return model.Archive{}, goerr.Wrap(err, "failed to store archive", goerr.V("key", key))
	}

	return model.Archive{
		Key:  key,
		Type: model.DefaultArchiveType,
		MD5:  sum,
		Size: size,
	}, nil
}

func (p *Packager) links(shortName, core, archiveKey string) (model.Links, error) {
	var (
		links model.Links
		err   error
	)

	if p.releaseBaseURL != "" {
		if links.ReleaseHistory, err = url.JoinPath(p.releaseBaseURL, shortName, core); err != nil {
			return model.Links{}, goerr.Wrap(err, "invalid release base URL", goerr.V("url", p.releaseBaseURL))
		}
	}
	if p.downloadBaseURL != "" {
		if links.Download, err = url.JoinPath(p.downloadBaseURL, archiveKey); err != nil {
			return model.Links{}, goerr.Wrap(err, "invalid download base URL", goerr.V("url", p.downloadBaseURL))
		}
	}

	links.Project = p.projectLink
	if links.Project == "" {
		links.Project = p.releaseBaseURL
	}

	return links, nil
}

// digestFile returns the hex MD5 and size of the file at path
func digestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to open file for digest", goerr.V("path", path))
	}
	defer f.Close()

	h := md5.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, goerr.Wrap(err, "failed to digest file", goerr.V("path", path))
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}
