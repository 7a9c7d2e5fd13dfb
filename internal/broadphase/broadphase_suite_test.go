package broadphase_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBroadPhase(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "BroadPhase Suite")
}
