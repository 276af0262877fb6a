package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"admissions-service/common/apperror"
	"admissions-service/common/httputil"
	"admissions-service/internal/admission"
	"admissions-service/internal/applicant"
	"admissions-service/internal/catalog"
	"admissions-service/internal/document"
	"admissions-service/internal/scholarship"
)

// HTTPClient talks to the admissions API. It implements Steps and the
// catalog reads the wizard needs.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) Careers(ctx context.Context) ([]catalog.Career, error) {
	var out []catalog.Career
	return out, c.do(ctx, http.MethodGet, "/careers", nil, &out)
}

func (c *HTTPClient) Modalities(ctx context.Context) ([]catalog.Modality, error) {
	var out []catalog.Modality
	return out, c.do(ctx, http.MethodGet, "/modalities", nil, &out)
}

func (c *HTTPClient) RequiredDocuments(ctx context.Context) ([]catalog.RequiredDocument, error) {
	var out []catalog.RequiredDocument
	return out, c.do(ctx, http.MethodGet, "/required-documents", nil, &out)
}

func (c *HTTPClient) Scholarships(ctx context.Context) ([]catalog.Scholarship, error) {
	var out []catalog.Scholarship
	return out, c.do(ctx, http.MethodGet, "/scholarships", nil, &out)
}

func (c *HTTPClient) Scholarship(ctx context.Context, id int64) (*catalog.Scholarship, error) {
	var out catalog.Scholarship
	if err := c.do(ctx, http.MethodGet, "/scholarships/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreateApplicant(ctx context.Context, req applicant.CreateRequest) (int64, error) {
	var out applicant.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/applicants", req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *HTTPClient) CreateAdmissionRequest(ctx context.Context, in admission.CreateInput) (int64, error) {
	var out admission.CreateResponse
	if err := c.do(ctx, http.MethodPost, "/admission-requests", in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UploadDocuments sends the files as "documents" parts with the positional
// "documentIds" list.
func (c *HTTPClient) UploadDocuments(ctx context.Context, applicantID int64, files []File) (*document.UploadResult, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("applicantId", strconv.FormatInt(applicantID, 10)); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(files))
	for _, f := range files {
		if err := writeFile(w, f); err != nil {
			return nil, apperror.Storage("failed to read "+f.Name, err)
		}
		ids = append(ids, strconv.FormatInt(f.RequiredDocumentID, 10))
	}

	encoded, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	if err := w.WriteField("documentIds", string(encoded)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-documents", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out document.UploadResult
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeFile(w *multipart.Writer, f File) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	part, err := w.CreateFormFile("documents", f.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

func (c *HTTPClient) RegisterDocuments(ctx context.Context, in document.RegisterInput) (int64, error) {
	var out document.RegisterResult
	if err := c.do(ctx, http.MethodPost, "/register-documents", in, &out); err != nil {
		return 0, err
	}
	return out.DocumentsRegistered, nil
}

func (c *HTTPClient) RegisterScholarship(ctx context.Context, in scholarship.AssignInput) (int64, error) {
	var out scholarship.AssignResponse
	if err := c.do(ctx, http.MethodPost, "/register-scholarship", in, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *HTTPClient) DeleteAdmissionRequest(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/admission-requests/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) DeleteApplicant(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/applicants/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(req.Context(), "api call", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body httputil.ErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil && len(raw) > 0 {
		body.Error = strings.TrimSpace(string(raw))
	}
	return apperror.FromStatus(resp.StatusCode, body.Code, body.Error, body.Details)
}

