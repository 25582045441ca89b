package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	pictureDir          = "profiles"
	pictureMaxRetries   = 3
	pictureMaxRedirects = 5
)

var (
	ErrPictureTooLarge   = errors.New("picture exceeds size limit")
	ErrPictureNotAllowed = errors.New("picture url not allowed")
)

// sharedAddressSpace is the carrier-grade NAT range, which IsPrivate misses.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// PictureService downloads remote profile pictures into the media root.
type PictureService struct {
	root     string
	client   *http.Client
	maxBytes int64
	logger   zerolog.Logger
}

func NewPictureService(mediaRoot string, timeout time.Duration, maxBytes int64, logger zerolog.Logger) *PictureService {
	return &PictureService{
		root:     mediaRoot,
		client:   newPictureClient(timeout),
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch downloads rawURL and stores it as profiles/<name>, returning that
// media-relative path. Transport errors and 5xx responses are retried.
func (s *PictureService) Fetch(ctx context.Context, rawURL, name string) (string, error) {
	if err := checkPictureURL(rawURL); err != nil {
		return "", err
	}

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		res, err := s.client.Do(req)
		if errors.Is(err, ErrPictureNotAllowed) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode >= 500 {
			return fmt.Errorf("picture fetch failed: status %d", res.StatusCode)
		}
		if res.StatusCode >= 400 {
			return backoff.Permanent(fmt.Errorf("picture fetch failed: status %d", res.StatusCode))
		}

		data, err := io.ReadAll(io.LimitReader(res.Body, s.maxBytes+1))
		if err != nil {
			return err
		}
		if int64(len(data)) > s.maxBytes {
			return backoff.Permanent(ErrPictureTooLarge)
		}
		body = data
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, pictureMaxRetries), ctx)); err != nil {
		return "", err
	}

	ref := path.Join(pictureDir, safeFileName(name))
	if err := s.write(ref, body); err != nil {
		return "", err
	}

	s.logger.Info().Str("url", rawURL).Str("stored", ref).Int("bytes", len(body)).Msg("profile picture stored")
	return ref, nil
}

// newPictureClient refuses connections to internal addresses, including those
// reached through redirects or DNS names resolving there.
func newPictureClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: timeout, Control: rejectInternalAddress}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= pictureMaxRedirects {
				return fmt.Errorf("stopped after %d redirects", pictureMaxRedirects)
			}
			return checkPictureURL(req.URL.String())
		},
	}
}

func checkPictureURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPictureNotAllowed, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return fmt.Errorf("%w: %s", ErrPictureNotAllowed, rawURL)
	}
	return nil
}

func rejectInternalAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPictureNotAllowed, host)
	}
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() ||
		sharedAddressSpace.Contains(ip) {
		return fmt.Errorf("%w: %s", ErrPictureNotAllowed, ip)
	}
	return nil
}

func (s *PictureService) write(ref string, data []byte) error {
	dst := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".picture-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write picture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write picture: %w", err)
	}
	return os.Rename(tmp.Name(), dst)
}

// safeFileName strips any directory components from name.
func safeFileName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		return "picture.jpg"
	}
	return base
}
