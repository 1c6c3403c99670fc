package solvers

import (
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/v2"
)

// Resolver loads the content a URI points to.
type Resolver func(location string) (string, error)

type URISolver struct {
	delims    delimiters
	resolvers map[string]Resolver
	policy    Policy
}

// NewURISolver replaces values such as @file://labels.txt with the content
// they point to. Built in schemes: file (relative to fsys), base64 and env.
func NewURISolver(start, end string, fsys fs.FS, policy ...Policy) *URISolver {
	if fsys == nil {
		fsys = os.DirFS(".")
	}
	s := &URISolver{
		delims: delimiters{start: start, end: end},
		resolvers: map[string]Resolver{
			"file":   FileResolver(fsys),
			"base64": Base64Resolver,
			"env":    EnvResolver,
		},
	}
	if len(policy) > 0 {
		s.policy = policy[0]
	}
	return s
}

// Register adds or replaces the resolver for scheme.
func (s *URISolver) Register(scheme string, r Resolver) *URISolver {
	if scheme != "" && r != nil {
		s.resolvers[scheme] = r
	}
	return s
}

func (s *URISolver) Solve(k *koanf.Koanf) (int, error) {
	return rewrite(k, func(key, value string) (any, bool, error) {
		if !strings.HasPrefix(value, s.delims.start) {
			return nil, false, nil
		}
		scheme, location, ok := strings.Cut(value[len(s.delims.start):], s.delims.end)
		if !ok {
			return nil, false, nil
		}
		resolve, ok := s.resolvers[scheme]
		if !ok {
			return nil, false, nil
		}
		content, err := resolve(location)
		if err != nil {
			return unresolved(s.policy, k, key, err)
		}
		return content, true, nil
	})
}

// FileResolver reads location from fsys, trailing newlines trimmed.
func FileResolver(fsys fs.FS) Resolver {
	return func(location string) (string, error) {
		b, err := fs.ReadFile(fsys, location)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\n"), nil
	}
}

func Base64Resolver(location string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(location)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func EnvResolver(location string) (string, error) {
	value, ok := os.LookupEnv(location)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", location)
	}
	return value, nil
}
