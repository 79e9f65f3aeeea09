package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrArtifactNotFound is returned when no artifact file exists for a kind.
var ErrArtifactNotFound = errors.New("artifact not found")

// Artifact is the interface definition and creation bytecode of a contract kind.
type Artifact struct {
	Kind     Kind
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// artifactJSON is the hardhat/truffle artifact layout.
type artifactJSON struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// NewArtifact builds an artifact from a JSON ABI and hex bytecode.
func NewArtifact(kind Kind, abiJSON string, bytecode string) (*Artifact, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", kind, err)
	}

	return &Artifact{
		Kind:     kind,
		Name:     string(kind),
		ABI:      parsed,
		Bytecode: common.FromHex(bytecode),
	}, nil
}

// ParseArtifact decodes an artifact JSON document.
func ParseArtifact(kind Kind, data []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode artifact of %s: %w", kind, err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("artifact of %s has no abi", kind)
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", kind, err)
	}

	a := &Artifact{
		Kind:     kind,
		Name:     raw.ContractName,
		ABI:      parsed,
		Bytecode: common.FromHex(raw.Bytecode),
	}
	if a.Name == "" {
		a.Name = string(kind)
	}

	return a, nil
}

// Store loads artifacts named "<Kind>.json" from a file system and caches them per kind.
// It is safe for concurrent use.
type Store struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[Kind]*Artifact
}

// NewStore returns a store reading from fsys, e.g. os.DirFS("artifacts").
func NewStore(fsys fs.FS) *Store {
	return &Store{
		fsys:  fsys,
		cache: make(map[Kind]*Artifact),
	}
}

// Add registers a pre-built artifact, replacing any cached artifact of the same kind.
func (s *Store) Add(a *Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[a.Kind] = a
}

// Load returns the artifact of kind.
func (s *Store) Load(kind Kind) (*Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.cache[kind]; ok {
		return a, nil
	}

	if s.fsys == nil {
		return nil, fmt.Errorf("%s: %w", kind, ErrArtifactNotFound)
	}

	data, err := fs.ReadFile(s.fsys, string(kind)+".json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", kind, ErrArtifactNotFound)
		}

		return nil, fmt.Errorf("failed to read artifact of %s: %w", kind, err)
	}

	a, err := ParseArtifact(kind, data)
	if err != nil {
		return nil, err
	}
	s.cache[kind] = a

	return a, nil
}
