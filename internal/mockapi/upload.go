package mockapi

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Upload limits, matching the backend.
const (
	maxImages     = 5
	maxImageBytes = 10 << 20
)

// uploadInput is a multipart form carrying the listing fields and up to five
// "images" parts.
type uploadInput struct {
	RawBody multipart.Form

	// origin is the scheme and host the request arrived on, used to build
	// image URLs.
	origin string
}

// Resolve implements huma.Resolver.
func (in *uploadInput) Resolve(ctx huma.Context) []error {
	scheme := "http"
	if ctx.TLS() != nil {
		scheme = "https"
	}
	in.origin = scheme + "://" + ctx.Host()
	return nil
}

func (in *uploadInput) value(name string) string {
	if vs := in.RawBody.Value[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// upload handles POST /upload.
func (s *Server) upload(ctx context.Context, in *uploadInput) (*reply, error) {
	field := func(name string) string {
		return strings.TrimSpace(in.value(name))
	}
	title := field("title")
	description := in.value("description")
	contact := field("contact_info")
	zip := field("zip_code")

	if title == "" || contact == "" || zip == "" {
		return nil, failure(http.StatusBadRequest, "Title, contact info and zip code are required")
	}
	price, err := decimal.NewFromString(field("price"))
	if err != nil {
		return nil, failure(http.StatusBadRequest, "Invalid price")
	}
	if msg := checkFields(title, description, price); msg != "" {
		return nil, failure(http.StatusBadRequest, msg)
	}
	if len(contact) > maxContactLen || len(zip) > maxZipCodeLen {
		return nil, failure(http.StatusBadRequest, "Contact info or zip code is too long")
	}
	negotiable, _ := strconv.ParseBool(field("negotiable"))

	files := in.RawBody.File["images"]
	switch {
	case len(files) == 0:
		return nil, failure(http.StatusBadRequest, "At least one image is required")
	case len(files) > maxImages:
		return nil, failure(http.StatusBadRequest, "Too many images")
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		name, msg := s.storeImage(fh)
		if msg != "" {
			return nil, failure(http.StatusBadRequest, msg)
		}
		urls = append(urls, fmt.Sprintf("%s/images/%s", in.origin, name))
	}

	l, err := s.cat.addPost(Listing{
		OwnerID:     currentUser(ctx),
		Title:       title,
		Description: description,
		Price:       price,
		ContactInfo: contact,
		ZipCode:     zip,
		Negotiable:  negotiable,
		ImageURLs:   urls,
	})
	if err != nil {
		s.log.Error("creating post", "error", err)
		return nil, failure(http.StatusInternalServerError, "Failed to create post")
	}

	s.log.Info("post created", "post_id", l.ID, "images", len(urls))
	return ok(http.StatusCreated, "Post created successfully", s.view(l)), nil
}

// storeImage keeps one uploaded file and returns its name, or a failure
// message for the client.
func (s *Server) storeImage(fh *multipart.FileHeader) (string, string) {
	if fh.Size > maxImageBytes {
		return "", "File size exceeds limit"
	}

	f, err := fh.Open()
	if err != nil {
		return "", "File upload failed"
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return "", "File upload failed"
	}
	if len(data) > maxImageBytes {
		return "", "File size exceeds limit"
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", "Invalid file type"
	}

	name := uuid.NewString() + strings.ToLower(path.Ext(fh.Filename))
	s.cat.putImage(name, contentType, data)
	return name, ""
}

type imageInput struct {
	Name string `path:"name" doc:"Stored image name"`
}

type imageOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// serveImage handles GET /images/{name}.
func (s *Server) serveImage(_ context.Context, in *imageInput) (*imageOutput, error) {
	img, found := s.cat.image(in.Name)
	if !found {
		return nil, failure(http.StatusNotFound, "Image not found")
	}
	return &imageOutput{ContentType: img.contentType, Body: img.data}, nil
}

func (s *Server) registerUploadRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:  "create-item",
		Method:       http.MethodPost,
		Path:         "/upload",
		Summary:      "Create a post",
		Description:  "Creates an active post from a multipart form with one to five images.",
		Tags:         []string{"items"},
		Middlewares:  huma.Middlewares{s.requireAuth(api)},
		MaxBodyBytes: maxImages*maxImageBytes + 1<<20,
		Errors:       []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, s.upload)

	huma.Register(api, huma.Operation{
		OperationID: "get-image",
		Method:      http.MethodGet,
		Path:        "/images/{name}",
		Summary:     "Get an uploaded image",
		Tags:        []string{"images"},
		Errors:      []int{http.StatusNotFound},
	}, s.serveImage)
}
