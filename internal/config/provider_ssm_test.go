package config

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// stubSSMClient implements ssmClient with a canned parameter store.
type stubSSMClient struct {
	store   map[string]string
	invalid []string
	err     error
	batches [][]string
}

func (s *stubSSMClient) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	s.batches = append(s.batches, in.Names)
	if s.err != nil {
		return nil, s.err
	}
	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		if val, ok := s.store[name]; ok {
			out.Parameters = append(out.Parameters, ssmtypes.Parameter{
				Name:  aws.String(name),
				Value: aws.String(val),
			})
		}
	}
	out.InvalidParameters = s.invalid
	return out, nil
}

func TestSSMProvider_ImplementsSecretProvider(t *testing.T) {
	var _ SecretProvider = (*SSMProvider)(nil)
	var _ SecretProvider = NewSSMProvider("us-east-1")
}

func TestSSMProvider_EmptyKeys(t *testing.T) {
	client := &stubSSMClient{}
	provider := newSSMProviderWithClient("us-east-1", client)

	result, err := provider.GetParametersBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetParametersBatch: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("result = %v, want empty", result)
	}
	if len(client.batches) != 0 {
		t.Errorf("no API call expected for empty keys, got %d", len(client.batches))
	}
}

func TestSSMProvider_BatchesAtAPILimit(t *testing.T) {
	store := make(map[string]string)
	var keys []string
	for i := 0; i < 23; i++ {
		path := fmt.Sprintf("/dev/capsule/param/%d", i)
		store[path] = fmt.Sprintf("value-%d", i)
		keys = append(keys, path)
	}
	client := &stubSSMClient{store: store}
	provider := newSSMProviderWithClient("us-east-1", client)

	result, err := provider.GetParametersBatch(context.Background(), keys)
	if err != nil {
		t.Fatalf("GetParametersBatch: %v", err)
	}
	if len(result) != 23 {
		t.Errorf("resolved %d params, want 23", len(result))
	}
	if len(client.batches) != 3 {
		t.Fatalf("batches = %d, want 3 (10+10+3)", len(client.batches))
	}
	for i, want := range []int{10, 10, 3} {
		if len(client.batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(client.batches[i]), want)
		}
	}
}

func TestSSMProvider_InvalidParametersFail(t *testing.T) {
	client := &stubSSMClient{
		store:   map[string]string{"/dev/capsule/ok": "fine"},
		invalid: []string{"/dev/capsule/missing"},
	}
	provider := newSSMProviderWithClient("us-east-1", client)

	_, err := provider.GetParametersBatch(context.Background(), []string{"/dev/capsule/ok", "/dev/capsule/missing"})
	if err == nil {
		t.Fatal("expected error for invalid parameters")
	}
}

func TestSSMProvider_APIErrorPropagates(t *testing.T) {
	apiErr := errors.New("throttled")
	client := &stubSSMClient{err: apiErr}
	provider := newSSMProviderWithClient("us-east-1", client)

	_, err := provider.GetParametersBatch(context.Background(), []string{"/dev/capsule/param"})
	if !errors.Is(err, apiErr) {
		t.Errorf("error = %v, want wrapped %v", err, apiErr)
	}
}

func TestSSMProvider_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &stubSSMClient{store: map[string]string{"/dev/capsule/param": "v"}}
	provider := newSSMProviderWithClient("us-east-1", client)

	_, err := provider.GetParametersBatch(ctx, []string{"/dev/capsule/param"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
