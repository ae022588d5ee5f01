package instanceapi_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/temirov/instancectl/internal/instanceapi"
)

func TestBranchListNames(testInstance *testing.T) {
	testCases := []struct {
		name          string
		payload       string
		expectedNames []string
		expectError   bool
	}{
		{name: "plain_names", payload: `["main", " dev ", ""]`, expectedNames: []string{"main", "dev"}},
		{name: "named_objects", payload: `[{"name":"main","commit":"a1"},{"name":"feature/x"}]`, expectedNames: []string{"main", "feature/x"}},
		{name: "wrapped_names", payload: `{"branches":["main","dev"],"current":"main"}`, expectedNames: []string{"main", "dev"}},
		{name: "wrapped_objects", payload: `{"branches":[{"name":"release"}]}`, expectedNames: []string{"release"}},
		{name: "unrecognized_object", payload: `{"status":"ok"}`, expectError: true},
		{name: "empty_payload", payload: ``, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			branchList := instanceapi.BranchList{Payload: instanceapi.Payload(testCase.payload)}
			names, namesError := branchList.Names()
			if testCase.expectError {
				require.ErrorIs(testInstance, namesError, instanceapi.ErrUnrecognizedBranchList)
				return
			}
			require.NoError(testInstance, namesError)
			require.Equal(testInstance, testCase.expectedNames, names)
		})
	}
}

func TestNormalizePullInput(testInstance *testing.T) {
	require.Equal(testInstance, instanceapi.PullRequest{InstanceName: "svc1"}, instanceapi.NormalizePullInput(instanceapi.InstanceName("svc1")))
	require.Equal(testInstance, instanceapi.PullRequest{InstanceName: "svc1", Branch: "dev"}, instanceapi.NormalizePullInput(instanceapi.PullRequest{InstanceName: "svc1", Branch: "dev"}))
	require.Equal(testInstance, instanceapi.PullRequest{}, instanceapi.NormalizePullInput(nil))

	encodedRequest, encodingError := json.Marshal(instanceapi.NormalizePullInput(instanceapi.InstanceName("svc1")))
	require.NoError(testInstance, encodingError)
	require.JSONEq(testInstance, `{"instance_name":"svc1"}`, string(encodedRequest))
}

func TestResultEnvelopeEncoding(testInstance *testing.T) {
	result := instanceapi.Result[instanceapi.Payload]{Data: instanceapi.Payload(`{"commit":"abc"}`)}
	encodedResult, encodingError := json.Marshal(result)
	require.NoError(testInstance, encodingError)
	require.JSONEq(testInstance, `{"data":{"commit":"abc"}}`, string(encodedResult))

	emptyResult := instanceapi.Result[instanceapi.Payload]{}
	encodedEmpty, emptyError := json.Marshal(emptyResult)
	require.NoError(testInstance, emptyError)
	require.JSONEq(testInstance, `{"data":null}`, string(encodedEmpty))
}
