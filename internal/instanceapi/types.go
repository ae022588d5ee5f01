package instanceapi

import (
	"bytes"
	"errors"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	nullPayloadConstant                   = "null"
	branchesFieldNameConstant             = "branches"
	unrecognizedBranchListMessageConstant = "branch list payload has an unrecognized shape"
)

// OperationName identifies a client operation in errors and log entries.
type OperationName string

// Supported operations.
const (
	OperationGetBranches OperationName = OperationName("GetBranches")
	OperationPull        OperationName = OperationName("Pull")
)

// ErrUnrecognizedBranchList indicates BranchList.Names could not interpret the payload.
var ErrUnrecognizedBranchList = errors.New(unrecognizedBranchListMessageConstant)

// Result wraps a successful response body under data.
type Result[T any] struct {
	Data T `json:"data"`
}

// Payload holds a response body exactly as the service returned it.
type Payload []byte

// MarshalJSON emits the payload verbatim.
func (payload Payload) MarshalJSON() ([]byte, error) {
	if len(payload) == 0 {
		return []byte(nullPayloadConstant), nil
	}
	return payload, nil
}

// UnmarshalJSON stores a copy of the raw payload.
func (payload *Payload) UnmarshalJSON(data []byte) error {
	*payload = append((*payload)[:0], data...)
	return nil
}

// Decode unmarshals the payload into target.
func (payload Payload) Decode(target any) error {
	return json.Unmarshal(payload, target)
}

// BranchList is the branches listing payload. It is returned verbatim and
// only interpreted on request through Names.
type BranchList struct {
	Payload
}

// Names extracts branch names from the common payload shapes: a list of
// strings, a list of objects with a name field, or either of those nested
// under a branches key.
func (branchList BranchList) Names() ([]string, error) {
	return extractBranchNames(bytes.TrimSpace(branchList.Payload))
}

func extractBranchNames(payload []byte) ([]string, error) {
	if len(payload) == 0 {
		return nil, ErrUnrecognizedBranchList
	}

	var plainNames []string
	if json.Unmarshal(payload, &plainNames) == nil {
		return trimBranchNames(plainNames), nil
	}

	var namedEntries []struct {
		Name string `json:"name"`
	}
	if json.Unmarshal(payload, &namedEntries) == nil {
		names := make([]string, 0, len(namedEntries))
		for _, namedEntry := range namedEntries {
			names = append(names, namedEntry.Name)
		}
		return trimBranchNames(names), nil
	}

	var wrapper map[string]json.RawMessage
	if json.Unmarshal(payload, &wrapper) == nil {
		if nestedPayload, hasBranches := wrapper[branchesFieldNameConstant]; hasBranches {
			return extractBranchNames(bytes.TrimSpace(nestedPayload))
		}
	}

	return nil, ErrUnrecognizedBranchList
}

func trimBranchNames(candidateNames []string) []string {
	names := make([]string, 0, len(candidateNames))
	for _, candidateName := range candidateNames {
		trimmedName := strings.TrimSpace(candidateName)
		if len(trimmedName) == 0 {
			continue
		}
		names = append(names, trimmedName)
	}
	return names
}

// PullInput is accepted by Pull. It is either an InstanceName, the legacy
// bare string form, or a PullRequest. Both are normalized into a PullRequest
// before anything else happens.
type PullInput interface {
	pullRequest() PullRequest
}

// InstanceName identifies a managed instance. Passing it to Pull is
// equivalent to PullRequest{InstanceName: name}.
type InstanceName string

func (instanceName InstanceName) pullRequest() PullRequest {
	return PullRequest{InstanceName: string(instanceName)}
}

// PullRequest is the canonical pull body.
type PullRequest struct {
	InstanceName string `json:"instance_name" yaml:"instance_name"`
	Branch       string `json:"branch,omitempty" yaml:"branch,omitempty"`
}

func (request PullRequest) pullRequest() PullRequest {
	return request
}

// NormalizePullInput resolves either input shape into a PullRequest.
func NormalizePullInput(input PullInput) PullRequest {
	if input == nil {
		return PullRequest{}
	}
	return input.pullRequest()
}
