package gcpvision

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/bryanwahyu/medinsight/internal/logger"
)

// Engine runs DOCUMENT_TEXT_DETECTION on Cloud Vision.
type Engine struct {
	client       *vision.ImageAnnotatorClient
	preprocess   bool
	maxDimension int
	log          *logger.Logger
}

type Options struct {
	CredentialsFile string
	Preprocess      bool
	MaxDimension    int
}

func New(ctx context.Context, opts Options, log *logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.Nop()
	}
	client, err := vision.NewImageAnnotatorClient(ctx, clientOptions(opts.CredentialsFile)...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Engine{
		client:       client,
		preprocess:   opts.Preprocess,
		maxDimension: opts.MaxDimension,
		log:          log.With("service", "gcpvision.Engine"),
	}, nil
}

// clientOptions accepts a path or inline JSON, then falls back to the
// standard GOOGLE_APPLICATION_CREDENTIALS lookup.
func clientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	}
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

func (e *Engine) Close() error {
	if e == nil || e.client == nil {
		return nil
	}
	return e.client.Close()
}

func (e *Engine) Recognize(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", nil
	}
	if e.preprocess {
		prepared, err := Preprocess(img, e.maxDimension)
		if err != nil {
			e.log.Debug("preprocess skipped", "error", err)
		} else {
			img = prepared
		}
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: img},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}
	resp, err := e.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}
	return strings.TrimSpace(r0.FullTextAnnotation.Text), nil
}
