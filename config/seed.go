package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedFile is the optional YAML document named by CONFIG_FILE.
//
//	tables:
//	  - capacity: 4
//	  - capacity: 2
//	staff:
//	  - username: host
//	    email: host@restobook.local
//	    password: ${STAFF_PASSWORD}
type SeedFile struct {
	Tables []SeedTable `yaml:"tables"`
	Staff  []SeedStaff `yaml:"staff"`
}

type SeedTable struct {
	Capacity int `yaml:"capacity"`
}

type SeedStaff struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LoadSeedFile reads path and expands ${VAR} references before decoding.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))

	var seed SeedFile
	if err := yaml.Unmarshal(expanded, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, t := range seed.Tables {
		if t.Capacity <= 0 {
			return nil, fmt.Errorf("seed table #%d: capacity must be positive", i+1)
		}
	}
	for i, st := range seed.Staff {
		if st.Username == "" || st.Email == "" || st.Password == "" {
			return nil, fmt.Errorf("seed staff #%d: username, email and password are required", i+1)
		}
	}
	return &seed, nil
}
