package store

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, &contractSuite{newStore: func() userStore { return NewInMemoryStore() }})
}
