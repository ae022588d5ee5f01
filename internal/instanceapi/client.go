package instanceapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authorizationHeaderConstant          = "Authorization"
	contentTypeHeaderConstant            = "Content-Type"
	acceptHeaderConstant                 = "Accept"
	requestIdentifierHeaderConstant      = "X-Request-ID"
	bearerPrefixConstant                 = "Bearer "
	jsonContentTypeConstant              = "application/json"
	defaultRequestTimeoutConstant        = 30 * time.Second
	branchesFailureLogMessageConstant    = "branch listing failed"
	pullFailureLogMessageConstant        = "pull failed"
	credentialReadFailedMessageConstant  = "credential could not be read"
	logFieldOperationConstant            = "operation"
	logFieldInstanceConstant             = "instance"
	logFieldBranchConstant               = "branch"
	logFieldStatusConstant               = "status"
	logFieldRequestIdentifierConstant    = "request_id"
	logFieldErrorKindConstant            = "error_kind"
	logFieldMethodConstant               = "method"
	logFieldURLConstant                  = "url"
	requestDispatchDebugMessageConstant  = "dispatching instance api request"
	responseReceivedDebugMessageConstant = "instance api response received"
)

// RepositoryClient is the contract for the instance manager's source control operations.
type RepositoryClient interface {
	GetBranches(executionContext context.Context, instanceName string) (Result[BranchList], error)
	Pull(executionContext context.Context, input PullInput) (Result[Payload], error)
}

// TokenReader returns the current bearer credential. An absent credential is
// reported as an empty string rather than an error.
type TokenReader interface {
	ReadToken(readContext context.Context) (string, error)
}

// HTTPDoer is the minimal interface required from http.Client.
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// RequestIdentifierGenerator produces correlation identifiers for outgoing requests.
type RequestIdentifierGenerator func() string

// ClientOptions configures Client construction.
type ClientOptions struct {
	BaseURLResolver            BaseURLResolver
	TokenReader                TokenReader
	HTTPClient                 HTTPDoer
	Logger                     *zap.Logger
	RequestIdentifierGenerator RequestIdentifierGenerator
}

// Client performs authenticated requests against the instance manager.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURLResolver            BaseURLResolver
	tokenReader                TokenReader
	httpClient                 HTTPDoer
	logger                     *zap.Logger
	requestIdentifierGenerator RequestIdentifierGenerator
}

type exchangeDetails struct {
	operation         OperationName
	failureLogMessage string
	method            string
	path              string
	body              []byte
	instanceName      string
	branch            string
}

// NewClient validates options and constructs a Client.
func NewClient(options ClientOptions) (*Client, error) {
	if options.BaseURLResolver == nil {
		return nil, ErrBaseURLResolverNotConfigured
	}
	if options.TokenReader == nil {
		return nil, ErrTokenReaderNotConfigured
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeoutConstant}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	requestIdentifierGenerator := options.RequestIdentifierGenerator
	if requestIdentifierGenerator == nil {
		requestIdentifierGenerator = uuid.NewString
	}

	return &Client{
		baseURLResolver:            options.BaseURLResolver,
		tokenReader:                options.TokenReader,
		httpClient:                 httpClient,
		logger:                     logger,
		requestIdentifierGenerator: requestIdentifierGenerator,
	}, nil
}

// GetBranches lists the branches available to the named instance. The
// instance name is not validated locally; an unusable name surfaces as the
// service's own failure.
func (client *Client) GetBranches(executionContext context.Context, instanceName string) (Result[BranchList], error) {
	responseBody, exchangeError := client.exchange(executionContext, exchangeDetails{
		operation:         OperationGetBranches,
		failureLogMessage: branchesFailureLogMessageConstant,
		method:            http.MethodGet,
		path:              branchesEndpointPath(instanceName),
		instanceName:      instanceName,
	})
	if exchangeError != nil {
		return Result[BranchList]{}, exchangeError
	}

	return Result[BranchList]{Data: BranchList{Payload: responseBody}}, nil
}

// Pull asks the service to update the instance from its remote. A bare
// InstanceName is accepted as a permanent shorthand for a PullRequest
// without a branch.
func (client *Client) Pull(executionContext context.Context, input PullInput) (Result[Payload], error) {
	pullRequest := NormalizePullInput(input)

	details := exchangeDetails{
		operation:         OperationPull,
		failureLogMessage: pullFailureLogMessageConstant,
		method:            http.MethodPost,
		path:              pullEndpointPathConstant,
		instanceName:      pullRequest.InstanceName,
		branch:            pullRequest.Branch,
	}

	requestBody, encodingError := json.Marshal(pullRequest)
	if encodingError != nil {
		return Result[Payload]{}, client.reportFailure(details, "", newAPIError(OperationPull, ErrorKindRequest, 0, "", encodingError))
	}
	details.body = requestBody

	responseBody, exchangeError := client.exchange(executionContext, details)
	if exchangeError != nil {
		return Result[Payload]{}, exchangeError
	}

	return Result[Payload]{Data: responseBody}, nil
}

func (client *Client) exchange(executionContext context.Context, details exchangeDetails) (Payload, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	requestIdentifier := client.requestIdentifierGenerator()

	baseURL, resolutionError := client.baseURLResolver.ResolveBaseURL(executionContext)
	if resolutionError != nil {
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindRequest, 0, "", resolutionError))
	}

	token, tokenError := client.tokenReader.ReadToken(executionContext)
	if tokenError != nil {
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindRequest, 0, credentialReadFailedMessageConstant+": "+tokenError.Error(), tokenError))
	}

	var bodyReader io.Reader
	if details.body != nil {
		bodyReader = bytes.NewReader(details.body)
	}

	requestURL, urlError := endpointURL(baseURL, details.path)
	if urlError != nil {
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindRequest, 0, "", urlError))
	}
	httpRequest, requestError := http.NewRequestWithContext(executionContext, details.method, requestURL, bodyReader)
	if requestError != nil {
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindRequest, 0, "", requestError))
	}

	httpRequest.Header.Set(contentTypeHeaderConstant, jsonContentTypeConstant)
	httpRequest.Header.Set(acceptHeaderConstant, jsonContentTypeConstant)
	httpRequest.Header.Set(requestIdentifierHeaderConstant, requestIdentifier)
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) > 0 {
		httpRequest.Header.Set(authorizationHeaderConstant, bearerPrefixConstant+trimmedToken)
	}

	client.logger.Debug(
		requestDispatchDebugMessageConstant,
		zap.String(logFieldOperationConstant, string(details.operation)),
		zap.String(logFieldMethodConstant, details.method),
		zap.String(logFieldURLConstant, requestURL),
		zap.String(logFieldRequestIdentifierConstant, requestIdentifier),
	)

	httpResponse, transportError := client.httpClient.Do(httpRequest)
	if transportError != nil {
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindTransport, 0, "", transportError))
	}
	defer httpResponse.Body.Close() //nolint:errcheck

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindTransport, httpResponse.StatusCode, "", readError))
	}

	client.logger.Debug(
		responseReceivedDebugMessageConstant,
		zap.String(logFieldOperationConstant, string(details.operation)),
		zap.Int(logFieldStatusConstant, httpResponse.StatusCode),
		zap.String(logFieldRequestIdentifierConstant, requestIdentifier),
	)

	if httpResponse.StatusCode < http.StatusOK || httpResponse.StatusCode >= http.StatusMultipleChoices {
		statusMessage := extractFailureMessage(responseBody, httpResponse.StatusCode)
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindHTTPStatus, httpResponse.StatusCode, statusMessage, ErrHTTPStatus))
	}

	trimmedBody := bytes.TrimSpace(responseBody)
	var decodedBody any
	if decodingError := json.Unmarshal(trimmedBody, &decodedBody); decodingError != nil {
		return nil, client.reportFailure(details, requestIdentifier, newAPIError(details.operation, ErrorKindDecode, 0, decodeErrorMessageConstant, decodingError))
	}

	return Payload(trimmedBody), nil
}

// reportFailure logs the failure once and returns it for propagation.
func (client *Client) reportFailure(details exchangeDetails, requestIdentifier string, apiError *APIError) error {
	apiError.RequestID = requestIdentifier

	logFields := []zap.Field{
		zap.String(logFieldOperationConstant, string(details.operation)),
		zap.String(logFieldInstanceConstant, details.instanceName),
		zap.String(logFieldErrorKindConstant, string(apiError.Kind)),
		zap.String(logFieldRequestIdentifierConstant, requestIdentifier),
		zap.Error(apiError),
	}
	if len(details.branch) > 0 {
		logFields = append(logFields, zap.String(logFieldBranchConstant, details.branch))
	}
	if apiError.StatusCode() > 0 {
		logFields = append(logFields, zap.Int(logFieldStatusConstant, apiError.StatusCode()))
	}

	client.logger.Error(details.failureLogMessage, logFields...)

	return apiError
}

func extractFailureMessage(responseBody []byte, statusCode int) string {
	var failureBody struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if decodingError := json.Unmarshal(bytes.TrimSpace(responseBody), &failureBody); decodingError == nil {
		for _, candidateMessage := range []string{failureBody.Error, failureBody.Message, failureBody.Detail} {
			trimmedMessage := strings.TrimSpace(candidateMessage)
			if len(trimmedMessage) > 0 {
				return trimmedMessage
			}
		}
	}
	return statusFallbackMessage(statusCode)
}

var _ RepositoryClient = (*Client)(nil)
