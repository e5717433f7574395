package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/palikaops/survey-pipeline/processor"
)

// SurveyFormConfig declares one collection form to poll: which survey kind
// its submissions are, and which raw fields name downloadable attachments.
type SurveyFormConfig struct {
	FormID           string
	SurveyKind       string
	AttachmentFields []string
}

type SurveyAPIConfig struct {
	BaseURL      string
	Username     string
	Password     string
	Forms        []SurveyFormConfig
	PageSize     int
	PollInterval time.Duration
	MaxWorkers   int
	RetryLimit   int
	RetryWait    time.Duration
}

// SurveyAPISourceAdapter pulls pages of raw submissions from the external
// collection platform over an authenticated session and forwards each
// submission to the parser chain. Submissions within a page are processed
// with bounded concurrency; a failed submission is logged and skipped, never
// aborting the page.
type SurveyAPISourceAdapter struct {
	config     SurveyAPIConfig
	processors []processor.Processor
	client     *http.Client
	blobStore  BlobStore
	token      string
	stats      struct {
		processedSubmissions int64
		failedSubmissions    int64
		lastLogTime          time.Time
	}
}

func NewSurveyAPISourceAdapter(config map[string]interface{}) (SourceAdapter, error) {
	baseURL, ok := config["base_url"].(string)
	if !ok {
		return nil, errors.New("base_url must be specified")
	}
	username, ok := config["username"].(string)
	if !ok {
		return nil, errors.New("username must be specified")
	}
	password, ok := config["password"].(string)
	if !ok {
		return nil, errors.New("password must be specified")
	}

	formsRaw, ok := config["forms"].([]interface{})
	if !ok || len(formsRaw) == 0 {
		return nil, errors.New("at least one form must be configured")
	}
	forms := make([]SurveyFormConfig, 0, len(formsRaw))
	for _, raw := range formsRaw {
		fm, ok := raw.(map[interface{}]interface{})
		if !ok {
			return nil, errors.New("each form must be a config block")
		}
		form := SurveyFormConfig{}
		if v, ok := fm["form_id"].(string); ok {
			form.FormID = v
		}
		if v, ok := fm["survey_kind"].(string); ok {
			form.SurveyKind = v
		}
		if fields, ok := fm["attachment_fields"].([]interface{}); ok {
			for _, f := range fields {
				if s, ok := f.(string); ok {
					form.AttachmentFields = append(form.AttachmentFields, s)
				}
			}
		}
		if form.FormID == "" || form.SurveyKind == "" {
			return nil, errors.New("form_id and survey_kind are required for every form")
		}
		forms = append(forms, form)
	}

	cfg := SurveyAPIConfig{
		BaseURL:    baseURL,
		Username:   username,
		Password:   password,
		Forms:      forms,
		PageSize:   100,
		MaxWorkers: 8,
		RetryLimit: 3,
		RetryWait:  5 * time.Second,
	}
	if v, ok := config["page_size"].(int); ok && v > 0 {
		cfg.PageSize = v
	}
	if v, ok := config["max_workers"].(int); ok && v > 0 {
		cfg.MaxWorkers = v
	}
	if v, ok := config["retry_limit"].(int); ok && v > 0 {
		cfg.RetryLimit = v
	}
	if v, ok := config["retry_wait"].(int); ok && v > 0 {
		cfg.RetryWait = time.Duration(v) * time.Second
	}
	if v, ok := config["poll_interval"].(int); ok && v > 0 {
		cfg.PollInterval = time.Duration(v) * time.Second
	}

	adapter := &SurveyAPISourceAdapter{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}

	if storageCfg, ok := config["attachments_storage"].(map[interface{}]interface{}); ok {
		adapter.blobStore, _ = newBlobStoreFromConfig(storageCfg)
		if adapter.blobStore == nil {
			return nil, errors.New("invalid attachments_storage config")
		}
	}

	return adapter, nil
}

func newBlobStoreFromConfig(raw map[interface{}]interface{}) (BlobStore, error) {
	cfg := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		if ks, ok := k.(string); ok {
			cfg[ks] = v
		}
	}
	switch cfg["type"] {
	case "S3", "s3", nil:
		return NewS3BlobStore(cfg)
	default:
		return nil, errors.Errorf("unsupported attachments storage type: %v", cfg["type"])
	}
}

func (s *SurveyAPISourceAdapter) Subscribe(receiver processor.Processor) {
	s.processors = append(s.processors, receiver)
}

func (s *SurveyAPISourceAdapter) Run(ctx context.Context) error {
	if err := s.login(ctx); err != nil {
		return errors.Wrap(err, "error logging in to collection platform")
	}

	s.stats.lastLogTime = time.Now()

	for {
		for _, form := range s.config.Forms {
			if err := s.syncForm(ctx, form); err != nil {
				// One form failing (e.g. revoked access) must not stop the
				// others.
				log.Printf("error syncing form %s: %v", form.FormID, err)
			}
		}

		if s.config.PollInterval == 0 {
			log.Printf("processed %d submissions (%d failed), exiting",
				atomic.LoadInt64(&s.stats.processedSubmissions),
				atomic.LoadInt64(&s.stats.failedSubmissions))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.config.PollInterval):
		}
	}
}

func (s *SurveyAPISourceAdapter) login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"username": s.config.Username,
		"password": s.config.Password,
	})
	if err != nil {
		return err
	}

	return withRetry(ctx, s.config.RetryLimit, s.config.RetryWait, "login", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			s.config.BaseURL+"/api/v1/auth/login", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("login returned status %d", resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		token := gjson.GetBytes(data, "token").String()
		if token == "" {
			return errors.New("login response carried no token")
		}
		s.token = token
		return nil
	})
}

// syncForm pulls the form's submissions page by page and fans each page out
// across a bounded worker group.
func (s *SurveyAPISourceAdapter) syncForm(ctx context.Context, form SurveyFormConfig) error {
	for start := 0; ; start += s.config.PageSize {
		page, err := s.fetchPage(ctx, form.FormID, start)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.config.MaxWorkers)
		for _, submission := range page {
			submission := submission
			g.Go(func() error {
				if err := s.processSubmission(gctx, form, submission); err != nil {
					// Per-submission failures are logged with identifying
					// context and swallowed so the rest of the page proceeds.
					log.Printf("error processing %s submission %s: %v",
						form.SurveyKind, gjson.GetBytes(submission, "_id").String(), err)
					atomic.AddInt64(&s.stats.failedSubmissions, 1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if time.Since(s.stats.lastLogTime) > 10*time.Second {
			log.Printf("processed %d submissions so far (%d failed)",
				atomic.LoadInt64(&s.stats.processedSubmissions),
				atomic.LoadInt64(&s.stats.failedSubmissions))
			s.stats.lastLogTime = time.Now()
		}

		if len(page) < s.config.PageSize {
			return nil
		}
	}
}

func (s *SurveyAPISourceAdapter) fetchPage(ctx context.Context, formID string, start int) ([]json.RawMessage, error) {
	url := fmt.Sprintf("%s/api/v1/data/%s?start=%d&limit=%d",
		s.config.BaseURL, formID, start, s.config.PageSize)

	var page []json.RawMessage
	err := withRetry(ctx, s.config.RetryLimit, s.config.RetryWait, "fetch page", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+s.token)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("data listing returned status %d", resp.StatusCode)
		}

		page = page[:0]
		return json.NewDecoder(resp.Body).Decode(&page)
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (s *SurveyAPISourceAdapter) processSubmission(ctx context.Context, form SurveyFormConfig, raw json.RawMessage) error {
	submissionID := gjson.GetBytes(raw, "_id").String()
	if submissionID == "" {
		return errors.New("submission has no _id")
	}

	// Attachment failures abort only this submission's attachment step; the
	// submission itself still flows to the parsers.
	if s.blobStore != nil && len(form.AttachmentFields) > 0 {
		if err := s.fetchAttachments(ctx, form, raw, submissionID); err != nil {
			log.Printf("error fetching attachments for submission %s: %v", submissionID, err)
		}
	}

	msg := processor.Message{
		Payload: []byte(raw),
		Metadata: map[string]interface{}{
			"submission_source": &processor.SubmissionMetadata{
				SurveyKind:   form.SurveyKind,
				FormID:       form.FormID,
				SubmissionID: submissionID,
				FetchedAt:    time.Now().UTC(),
			},
		},
	}

	for _, proc := range s.processors {
		if err := proc.Process(ctx, msg); err != nil {
			return errors.Wrap(err, "error in processor")
		}
	}

	atomic.AddInt64(&s.stats.processedSubmissions, 1)
	return nil
}

func (s *SurveyAPISourceAdapter) fetchAttachments(ctx context.Context, form SurveyFormConfig, raw json.RawMessage, submissionID string) error {
	named := make(map[string]bool, len(form.AttachmentFields))
	for _, field := range form.AttachmentFields {
		if name := gjson.GetBytes(raw, field).String(); name != "" {
			named[name] = true
		}
	}

	var firstErr error
	gjson.GetBytes(raw, "_attachments").ForEach(func(_, att gjson.Result) bool {
		filename := path.Base(att.Get("filename").String())
		if !named[filename] {
			return true
		}
		url := att.Get("download_url").String()
		if url == "" {
			return true
		}

		data, contentType, err := s.download(ctx, url)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return true
		}

		// Collision-avoiding name: trailing digits of the submission id plus
		// the original filename.
		name := trailingDigits(submissionID, 6) + "_" + filename
		if err := s.blobStore.Put(ctx, name, contentType, data); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

func (s *SurveyAPISourceAdapter) download(ctx context.Context, url string) ([]byte, string, error) {
	var data []byte
	var contentType string
	err := withRetry(ctx, s.config.RetryLimit, s.config.RetryWait, "download attachment", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+s.token)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("attachment download returned status %d", resp.StatusCode)
		}

		contentType = resp.Header.Get("Content-Type")
		data, err = io.ReadAll(resp.Body)
		return err
	})
	return data, contentType, err
}

// trailingDigits returns the last n digit characters of s.
func trailingDigits(s string, n int) string {
	digits := make([]byte, 0, n)
	for i := len(s) - 1; i >= 0 && len(digits) < n; i-- {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append([]byte{s[i]}, digits...)
		}
	}
	return string(digits)
}
