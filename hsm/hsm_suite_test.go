package hsm_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHSM(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "HSM Suite")
}
