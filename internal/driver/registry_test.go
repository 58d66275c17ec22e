package driver_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/dodriver/internal/driver"
)

var _ = Describe("Registry", func() {
	var reg *driver.Registry

	BeforeEach(func() {
		reg = driver.NewRegistry()
	})

	It("rejects duplicate providers", func() {
		Expect(driver.RegisterDigitalOcean(reg)).To(Succeed())
		Expect(driver.RegisterDigitalOcean(reg)).To(MatchError(driver.ErrDuplicateProvider))
		Expect(reg.Providers()).To(Equal([]string{"digitalocean"}))
	})

	It("rejects empty names and nil factories", func() {
		Expect(reg.Register(" ", driver.New)).NotTo(Succeed())
		Expect(reg.Register("digitalocean", nil)).NotTo(Succeed())
	})

	It("dispatches on the provider and passes the credential id", func() {
		var got string
		Expect(reg.Register("Fake", func(_ context.Context, id string, _ driver.Options) (*driver.Driver, error) {
			got = id
			return nil, nil
		})).To(Succeed())

		_, err := reg.Open(context.Background(), "fake:abc123", driver.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal("abc123"))
	})

	It("fails for unknown providers", func() {
		_, err := reg.Open(context.Background(), "hetzner:abc", driver.Options{})
		Expect(err).To(MatchError(driver.ErrUnknownProvider))
	})

	DescribeTable("ParseURL",
		func(url, provider, credentialID string, valid bool) {
			p, id, err := driver.ParseURL(url)
			if !valid {
				Expect(err).To(MatchError(driver.ErrInvalidURL))
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(Equal(provider))
			Expect(id).To(Equal(credentialID))
		},
		Entry("provider and id", "digitalocean:abc", "digitalocean", "abc", true),
		Entry("upper case provider", "DigitalOcean:abc", "digitalocean", "abc", true),
		Entry("provider only", "digitalocean", "digitalocean", "", true),
		Entry("id keeps colons", "digitalocean:a:b", "digitalocean", "a:b", true),
		Entry("empty", "", "", "", false),
		Entry("missing provider", ":abc", "", "", false),
	)
})
