package credentials

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	tildeSymbolConstant                    = "~"
	tildeForwardSlashPrefixConstant        = "~/"
	fileReadErrorTemplateConstant          = "unable to read credential file %s: %w"
	parameterStoreMissingMessageConstant   = "parameter store client not configured"
	unsupportedStoreSourceTemplateConstant = "unsupported credential source type %q"
)

// ErrParameterStoreNotConfigured indicates an ssm source was requested without a client.
var ErrParameterStoreNotConfigured = errors.New(parameterStoreMissingMessageConstant)

// Store returns the current bearer token. Implementations report an absent
// token as an empty string and reserve errors for backends that cannot be read.
type Store interface {
	ReadToken(readContext context.Context) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// Dependencies overrides the operating system collaborators used by stores.
type Dependencies struct {
	EnvironmentLookup     EnvironmentLookup
	FileReader            FileReader
	HomeDirectoryProvider HomeDirectoryProvider
	ParameterGetter       ParameterGetter
}

// EnvironmentStore reads the token from an environment variable.
type EnvironmentStore struct {
	VariableName string
	Lookup       EnvironmentLookup
}

// ReadToken returns the variable's trimmed value.
func (store EnvironmentStore) ReadToken(readContext context.Context) (string, error) {
	lookup := store.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, _ := lookup(store.VariableName)
	return strings.TrimSpace(value), nil
}

// FileStore reads the token from Directory/Key.
type FileStore struct {
	Directory string
	Key       string
	Reader    FileReader
}

// ReadToken returns the file's trimmed contents; a missing file yields an empty token.
func (store FileStore) ReadToken(readContext context.Context) (string, error) {
	reader := store.Reader
	if reader == nil {
		reader = os.ReadFile
	}
	tokenPath := store.Path()
	contents, readError := reader(tokenPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf(fileReadErrorTemplateConstant, tokenPath, readError)
	}
	return strings.TrimSpace(string(contents)), nil
}

// Path returns the file the token is read from.
func (store FileStore) Path() string {
	return filepath.Join(store.Directory, store.Key)
}

// NewStore materializes the store described by source for the given key.
// Environment sources without a variable name fall back to the upper-cased key.
func NewStore(source SourceConfiguration, key string, dependencies Dependencies) (Store, error) {
	trimmedKey := strings.TrimSpace(key)
	if len(trimmedKey) == 0 {
		trimmedKey = DefaultTokenKey
	}

	switch source.Type {
	case SourceTypeEnvironment:
		variableName := strings.TrimSpace(source.Reference)
		if len(variableName) == 0 {
			variableName = strings.ToUpper(trimmedKey)
		}
		return EnvironmentStore{VariableName: variableName, Lookup: dependencies.EnvironmentLookup}, nil
	case SourceTypeFile:
		return FileStore{
			Directory: expandHomeDirectory(source.Reference, dependencies.HomeDirectoryProvider),
			Key:       trimmedKey,
			Reader:    dependencies.FileReader,
		}, nil
	case SourceTypeParameterStore:
		if dependencies.ParameterGetter == nil {
			return nil, ErrParameterStoreNotConfigured
		}
		return ParameterStore{
			Getter:        dependencies.ParameterGetter,
			ParameterName: parameterName(source.Reference, trimmedKey),
		}, nil
	default:
		return nil, fmt.Errorf(unsupportedStoreSourceTemplateConstant, source.Type)
	}
}

func expandHomeDirectory(candidatePath string, provider HomeDirectoryProvider) string {
	if candidatePath != tildeSymbolConstant && !strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) {
		return candidatePath
	}
	if provider == nil {
		provider = os.UserHomeDir
	}
	homeDirectory, homeDirectoryError := provider()
	if homeDirectoryError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	if candidatePath == tildeSymbolConstant {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
}
