package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/cache"
	"github.com/diamantrouge/maison/pkg/httpclient"
	"github.com/diamantrouge/maison/pkg/imaging"
	"github.com/diamantrouge/maison/pkg/logger"
	"github.com/diamantrouge/maison/pkg/metrics"
	"github.com/diamantrouge/maison/pkg/storage"
	"github.com/diamantrouge/maison/pkg/workerpool"
)

const (
	MaxUploadBytes   = 5 << 20
	maxSourceBytes   = 20 << 20
	imageCacheTTL    = 7 * 24 * time.Hour
	imageCachePrefix = "images:"
)

var uploadExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// encoders is shared by every ImageService so resizing stays bounded
// process-wide.
var encoders = sync.OnceValue(func() *workerpool.Pool {
	return workerpool.New(config.ImageWorkers())
})

type ImageService struct {
	publicDir string
	disk      func() storage.Disk
	pool      *workerpool.Pool
}

func NewImageService() *ImageService {
	return &ImageService{publicDir: config.PublicDir(), disk: storage.Default, pool: encoders()}
}

// OptimizeRequest mirrors the query of GET /images/optimize.
type OptimizeRequest struct {
	URL     string
	Width   int
	Quality int
	Format  string
}

func (r OptimizeRequest) cacheKey() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%s", r.URL, r.Width, r.Quality, r.Format)))
	return imageCachePrefix + r.Format + ":" + hex.EncodeToString(sum[:16])
}

// Optimize serves a resized copy of a public or remote image, from cache
// when the same parameters were seen before.
func (s *ImageService) Optimize(ctx context.Context, req OptimizeRequest) (*imaging.Result, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, invalid("Le paramètre url est requis")
	}
	opts := imaging.Options{Width: req.Width, Quality: req.Quality, Format: req.Format}.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, invalid(err.Error())
	}
	req.Width, req.Quality, req.Format = opts.Width, opts.Quality, opts.Format

	key := req.cacheKey()
	if b, ok := cache.GetBytes(ctx, key); ok {
		metrics.ImagesOptimized.WithLabelValues(opts.Format, "hit").Inc()
		return &imaging.Result{Data: b, Format: opts.Format, ContentType: "image/" + opts.Format}, nil
	}

	src, err := s.source(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	var out *imaging.Result
	err = s.pool.Do(ctx, func() (err error) {
		out, err = imaging.Optimize(src, opts)
		return err
	})
	if errors.Is(err, imaging.ErrDecode) {
		return nil, invalid("Le fichier source n'est pas une image lisible")
	}
	if err != nil {
		return nil, err
	}

	metrics.ImagesOptimized.WithLabelValues(opts.Format, "miss").Inc()
	if err := cache.SetBytes(ctx, key, out.Data, imageCacheTTL); err != nil {
		logger.WithCtx(ctx).Debug("images: cache write skipped", "error", err)
	}
	return out, nil
}

func (s *ImageService) source(ctx context.Context, raw string) ([]byte, error) {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		resp, err := httpclient.Get(raw).Timeout(15 * time.Second).MaxBytes(maxSourceBytes).Send(ctx)
		if err != nil {
			return nil, &Error{Kind: ErrUpstream, Msg: "Impossible de récupérer l'image distante"}
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, notFound("Image introuvable")
		}
		if !resp.OK() {
			return nil, &Error{Kind: ErrUpstream, Msg: "Impossible de récupérer l'image distante"}
		}
		return resp.Raw, nil
	}

	path, err := s.publicPath(raw)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, notFound("Image introuvable")
	}
	return b, err
}

// publicPath resolves raw inside the public directory, refusing anything
// that would escape it.
func (s *ImageService) publicPath(raw string) (string, error) {
	if strings.Contains(raw, "..") || strings.ContainsRune(raw, 0) {
		return "", invalid("Chemin d'image invalide")
	}
	root, err := filepath.Abs(s.publicDir)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(raw, "/")))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", invalid("Chemin d'image invalide")
	}
	return full, nil
}

// Upload stores product photos under products/<uuid><ext> on the default
// disk and returns their public URLs.
func (s *ImageService) Upload(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, invalid("Aucune image fournie")
	}
	disk := s.disk()
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		if fh.Size > MaxUploadBytes {
			return nil, invalid(fmt.Sprintf("%s dépasse la taille maximale de 5 Mo", fh.Filename))
		}
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		ct := http.DetectContentType(data)
		ext, ok := uploadExt[ct]
		if !ok {
			return nil, invalid(fmt.Sprintf("%s n'est pas une image prise en charge", fh.Filename))
		}

		path := "products/" + uuid.NewString() + ext
		if err := disk.Put(ctx, path, bytes.NewReader(data), ct); err != nil {
			return nil, fmt.Errorf("images: store %s: %w", path, err)
		}
		urls = append(urls, disk.URL(path))
	}
	logger.WithCtx(ctx).Info("images: uploaded", "count", len(urls))
	return urls, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxUploadBytes {
		return nil, invalid(fmt.Sprintf("%s dépasse la taille maximale de 5 Mo", fh.Filename))
	}
	return data, nil
}
