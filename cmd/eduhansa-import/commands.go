package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"eduhansa/internal/assets"
	"eduhansa/internal/fixtures"
	"eduhansa/internal/imaging"
	"eduhansa/internal/models"
	"eduhansa/internal/slug"
	"eduhansa/internal/store"
)

// documentWriter is the document store as seen by the importer.
type documentWriter interface {
	fixtures.Writer
	HasSlug(ctx context.Context, docType, slug string) (bool, error)
	SetField(ctx context.Context, docType, slug, field string, value json.RawMessage) (bool, error)
}

// uploader puts files into object storage.
type uploader interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) error
	PublicBucket() string
}

// invalidator drops every cached page.
type invalidator interface {
	InvalidateAll(ctx context.Context) (int, error)
}

// app holds the services shared by all commands.
type app struct {
	docs  documentWriter
	files uploader    // nil when S3 is not configured
	pages invalidator // nil when Valkey is not configured
}

// opener connects to services. The returned func releases them.
type opener func(ctx context.Context) (*app, func(), error)

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

func newRootCmd(open opener) *cobra.Command {
	var release func()

	root := &cobra.Command{
		Use:          "eduhansa-import",
		Short:        "Import books, posts and covers into the EduHansa library",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, closer, err := open(cmd.Context())
			if err != nil {
				return err
			}
			release = closer
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if release != nil {
				release()
			}
			return nil
		},
	}

	root.AddCommand(
		newSeedCmd(),
		newDocumentsCmd(),
		newPostsCmd(),
		newCoversCmd(),
	)
	return root
}

func newSeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled sample library",
		Long:  "Loads the bundled sample library. Without --force nothing is written when the library already has books.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			var n int
			var err error
			if force {
				n, err = fixtures.SeedSample(ctx, a.docs)
			} else {
				n, err = fixtures.Seed(ctx, a.docs)
			}
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "library already has books; use --force to load the sample anyway")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents\n", n)
			return a.invalidate(ctx, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "load the sample even if books exist")
	return cmd
}

func newDocumentsCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "documents FILE.yaml...",
		Short: "Import documents from YAML datasets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var docs []store.Document
			for _, path := range args {
				d, err := decodeFile(path)
				if err != nil {
					return err
				}
				docs = append(docs, d...)
			}
			return appFrom(cmd).importDocuments(cmd.Context(), cmd.OutOrStdout(), docs, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and list documents without writing")
	return cmd
}

func newPostsCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "posts DIR",
		Short: "Import markdown posts with YAML front matter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectFiles(args[0], ".md", ".markdown")
			if err != nil {
				return err
			}
			docs := make([]store.Document, 0, len(paths))
			for _, path := range paths {
				d, err := parsePostFile(path)
				if err != nil {
					return err
				}
				docs = append(docs, d)
			}
			return appFrom(cmd).importDocuments(cmd.Context(), cmd.OutOrStdout(), docs, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and list posts without writing")
	return cmd
}

func newCoversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "covers DIR",
		Short: "Upload cover images and attach them to books",
		Long: "Uploads every image in DIR to the public bucket and sets it as the cover " +
			"of the book whose slug matches the file name (ml-101.jpg covers /library/ml-101).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if a.files == nil {
				return errors.New("covers: S3 storage is not configured")
			}
			paths, err := collectFiles(args[0], ".jpg", ".jpeg", ".png", ".gif", ".webp")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			attached := 0
			for _, path := range paths {
				ok, err := a.attachCover(ctx, path)
				if err != nil {
					// Covers attached so far must not stay hidden behind the cache.
					if attached > 0 {
						err = errors.Join(err, a.invalidate(ctx, out))
					}
					return err
				}
				if !ok {
					fmt.Fprintf(out, "skipped %s: no book with slug %q\n", path, coverSlug(path))
					continue
				}
				attached++
			}
			fmt.Fprintf(out, "attached %d of %d covers\n", attached, len(paths))
			if attached == 0 {
				return nil
			}
			return a.invalidate(ctx, out)
		},
	}
}

// importDocuments writes docs, or lists them when dryRun is set.
func (a *app) importDocuments(ctx context.Context, out io.Writer, docs []store.Document, dryRun bool) error {
	if dryRun {
		for _, d := range docs {
			fmt.Fprintf(out, "%s\t%s\n", d.Type, d.ID)
		}
		fmt.Fprintf(out, "%d documents valid\n", len(docs))
		return nil
	}
	if err := fixtures.Import(ctx, a.docs, docs); err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d documents\n", len(docs))
	return a.invalidate(ctx, out)
}

// attachCover uploads one cover and points the matching book at it. Files
// without a matching book are not uploaded.
func (a *app) attachCover(ctx context.Context, path string) (bool, error) {
	bookSlug := coverSlug(path)
	exists, err := a.docs.HasSlug(ctx, string(models.KindBook), bookSlug)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read cover: %w", err)
	}
	info, err := imaging.Inspect(bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if err := imaging.CheckCover(info); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	sum := sha256.Sum256(data)
	ref := assets.Ref(hex.EncodeToString(sum[:10]), info.Width, info.Height, info.Ext)
	key, _ := assets.Key(ref)

	if err := a.files.Upload(ctx, a.files.PublicBucket(), key, info.ContentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return false, err
	}

	value, err := json.Marshal(models.ImageRef{Asset: &models.AssetRef{Ref: ref}})
	if err != nil {
		return false, err
	}
	ok, err := a.docs.SetField(ctx, string(models.KindBook), bookSlug, "coverImage", value)
	if err != nil {
		return false, err
	}
	if ok {
		slog.InfoContext(ctx, "cover attached", "file", path, "ref", ref)
	}
	return ok, nil
}

// invalidate clears the page cache when one is configured.
func (a *app) invalidate(ctx context.Context, out io.Writer) error {
	if a.pages == nil {
		return nil
	}
	n, err := a.pages.InvalidateAll(ctx)
	if err != nil {
		return fmt.Errorf("invalidate page cache: %w", err)
	}
	fmt.Fprintf(out, "cleared %d cached pages\n", n)
	return nil
}

func decodeFile(path string) ([]store.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := fixtures.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

func parsePostFile(path string) (store.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.Document{}, err
	}
	defer f.Close()

	d, err := fixtures.ParsePost(f, filepath.Base(path))
	if err != nil {
		return store.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// collectFiles returns the regular files under dir with one of the given
// extensions (case-insensitive), sorted by path.
func collectFiles(dir string, exts ...string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// coverSlug maps a cover file name to the slug of its book.
func coverSlug(path string) string {
	name := filepath.Base(path)
	return slug.Generate(strings.TrimSuffix(name, filepath.Ext(name)))
}
