package common

type Module string

const (
	ModuleIssuance Module = "issuance"
)

func (m Module) String() string {
	return string(m)
}
