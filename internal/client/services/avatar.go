package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/netx"
)

// MaxAvatarSize caps the file the CLI will upload.
const MaxAvatarSize = 5 << 20

var ErrNotAnImage = errors.New("not an image")

// AvatarService uploads the signed-in user's avatar.
type AvatarService interface {
	Upload(ctx context.Context, path string) (*client.Upload, error)
}

type avatarService struct {
	client client.Client
	auth   AuthService
	http   *http.Client
}

func NewAvatarService(c client.Client, auth AuthService) AvatarService {
	return &avatarService{client: c, auth: auth, http: http.DefaultClient}
}

// Upload reads an image from path, asks the server for a presigned PUT and
// sends the bytes straight to the object store.
func (s *avatarService) Upload(ctx context.Context, path string) (*client.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxAvatarSize {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, len(data), MaxAvatarSize)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAnImage, path, contentType)
	}

	session, err := s.auth.Session(ctx)
	if err != nil {
		return nil, err
	}

	up, err := s.client.AvatarUpload(ctx, session.Token)
	if err != nil {
		return nil, fmt.Errorf("avatar upload url: %w", err)
	}

	if err := netx.UploadPresigned(ctx, s.http, up.URL, contentType, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return up, nil
}
