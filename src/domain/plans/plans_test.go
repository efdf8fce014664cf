package plans_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"graphmigrate/src/domain"
	"graphmigrate/src/domain/plans"
)

var _ = Describe("ByName", func() {
	It("resolves every built-in plan to a valid one", func() {
		for _, name := range []string{"catalog", "social", "streams"} {
			plan, err := plans.ByName(name)

			Expect(err).NotTo(HaveOccurred(), name)
			Expect(plan.Name).To(Equal(name))
			Expect(plan.Validate()).To(Succeed(), name)
		}
	})

	It("rejects unknown plan names", func() {
		_, err := plans.ByName("inventory")

		Expect(errors.Is(err, domain.ErrInvalidPlan)).To(BeTrue())
	})
})

var _ = Describe("Catalog", func() {
	It("reads only relational sources", func() {
		Expect(plans.Catalog().HasTableSources()).To(BeTrue())
	})

	It("emits every navigation event type plus the fallback", func() {
		Expect(plans.Catalog().RelationshipTypes()).To(ContainElements(
			"IN_CATEGORY", "PLACED", "CONTAINS",
			"VIEW", "ADDED_TO_CART", "PURCHASED", "OBSERVED",
		))
	})
})

var _ = Describe("Social", func() {
	It("reads only file sources", func() {
		Expect(plans.Social().HasTableSources()).To(BeFalse())
	})
})
