package credentials

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
)

const (
	parameterPathSeparatorConstant       = "/"
	parameterReadErrorTemplateConstant   = "unable to read parameter %s: %w"
	sessionCreationErrorTemplateConstant = "unable to create aws session: %w"
)

// ParameterGetter is the subset of the SSM API used by ParameterStore.
type ParameterGetter interface {
	GetParameterWithContext(getContext aws.Context, input *ssm.GetParameterInput, options ...request.Option) (*ssm.GetParameterOutput, error)
}

// ParameterStore reads the token from AWS Systems Manager Parameter Store.
type ParameterStore struct {
	Getter        ParameterGetter
	ParameterName string
}

// NewParameterGetter builds an SSM client from the shared AWS configuration.
func NewParameterGetter() (ParameterGetter, error) {
	awsSession, sessionError := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if sessionError != nil {
		return nil, fmt.Errorf(sessionCreationErrorTemplateConstant, sessionError)
	}
	return ssm.New(awsSession), nil
}

// ReadToken fetches and decrypts the parameter; a missing parameter yields an empty token.
func (store ParameterStore) ReadToken(readContext context.Context) (string, error) {
	if store.Getter == nil {
		return "", ErrParameterStoreNotConfigured
	}
	if readContext == nil {
		readContext = context.Background()
	}

	output, getError := store.Getter.GetParameterWithContext(readContext, &ssm.GetParameterInput{
		Name:           aws.String(store.ParameterName),
		WithDecryption: aws.Bool(true),
	})
	if getError != nil {
		var awsError awserr.Error
		if errors.As(getError, &awsError) && awsError.Code() == ssm.ErrCodeParameterNotFound {
			return "", nil
		}
		return "", fmt.Errorf(parameterReadErrorTemplateConstant, store.ParameterName, getError)
	}

	if output == nil || output.Parameter == nil {
		return "", nil
	}
	return strings.TrimSpace(aws.StringValue(output.Parameter.Value)), nil
}

func parameterName(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if !strings.HasPrefix(trimmedPrefix, parameterPathSeparatorConstant) {
		trimmedPrefix = parameterPathSeparatorConstant + trimmedPrefix
	}
	return path.Join(trimmedPrefix, key)
}
