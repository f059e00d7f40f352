package spatial_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSpatial(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Spatial Index Suite")
}
