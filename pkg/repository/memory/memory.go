package memory

import (
	"github.com/facepay-lab/facepay/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is the in-memory repository used for tests and development mode.
type Memory struct {
	registration *registrationRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		registration: newRegistrationRepository(),
	}
}

func (m *Memory) Registration() interfaces.RegistrationRepository {
	return m.registration
}

func (m *Memory) Close() error {
	return nil
}
