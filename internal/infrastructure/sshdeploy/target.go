package sshdeploy

// Target defines the deployment host and its connection details.
type Target struct {
	Host       string `yaml:"host" json:"host" toml:"host" validate:"required,hostname|ip"`
	User       string `yaml:"user" json:"user" toml:"user" validate:"required"`
	Password   string `yaml:"password,omitempty" json:"password,omitempty" toml:"password,omitempty" validate:"required_without=PrivateKey"`
	PrivateKey string `yaml:"private_key,omitempty" json:"private_key,omitempty" toml:"private_key,omitempty" validate:"required_without=Password,omitempty,file"`
	Port       int    `yaml:"port,omitempty" json:"port,omitempty" toml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
}

// GetPort returns the SSH port to use, defaulting to 22 if not specified.
func (t *Target) GetPort() int {
	if t.Port == 0 {
		return 22
	}
	return t.Port
}
