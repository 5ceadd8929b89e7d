package workflow

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"

	"github.com/zombor/billed/internal/bill"
)

var _ = Describe("BillsList", func() {
	var (
		ctx      context.Context
		store    *mockStore
		nav      *mockNavigator
		renderer *mockRenderer
		viewer   *mockViewer
		list     *BillsList
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = &mockStore{}
		nav = &mockNavigator{}
		renderer = &mockRenderer{}
		viewer = &mockViewer{}
		list = NewBillsList(store, Session{Email: ownerEmail, Type: "Employee"}, nav, renderer, viewer)
	})

	Describe("Activate", func() {
		var err error

		JustBeforeEach(func() {
			err = list.Activate(ctx)
		})

		When("the employee has bills", func() {
			BeforeEach(func() {
				store.bills = []bill.Bill{
					{ID: "47qAXb6fIm2zOKkLzMro", Email: ownerEmail, Name: "encore", Date: "2004-04-04", Amount: lo.ToPtr(400), Status: bill.StatusPending},
					{ID: "BeKy5Mo4jkmdfPGYpTxZ", Email: ownerEmail, Name: "test1", Date: "2001-01-01", Amount: lo.ToPtr(100), Status: bill.StatusRefused},
					{ID: "UIUZtnPQvnbFnB0ozvJh", Email: ownerEmail, Name: "test3", Date: "2003-03-03", Amount: lo.ToPtr(300), Status: bill.StatusAccepted},
					{ID: "qcCK3SzECmaZAGRrHjaC", Email: ownerEmail, Name: "test2", Date: "2002-02-02", Amount: lo.ToPtr(200), Status: bill.StatusRefused},
					{ID: "other", Email: "someone@else.domain", Name: "hidden", Date: "2005-05-05"},
				}
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should render the owner's bills from latest to earliest", func() {
				Expect(renderer.rendered).To(HaveLen(1))
				dates := make([]string, 0, 4)
				for _, s := range renderer.rendered[0] {
					dates = append(dates, s.RawDate)
				}
				Expect(dates).To(Equal([]string{"2004-04-04", "2003-03-03", "2002-02-02", "2001-01-01"}))
			})

			It("should format dates and statuses for display", func() {
				first := renderer.rendered[0][0]
				Expect(first.Date).To(Equal("4 Avr. 04"))
				Expect(first.Status).To(Equal("En attente"))
			})

			It("should not render an error", func() {
				Expect(renderer.errors).To(BeEmpty())
			})
		})

		When("the employee has no bills", func() {
			It("should render an empty list", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(renderer.rendered).To(HaveLen(1))
				Expect(renderer.rendered[0]).To(BeEmpty())
			})
		})

		When("a stored date cannot be formatted", func() {
			BeforeEach(func() {
				store.bills = []bill.Bill{{ID: "1", Email: ownerEmail, Date: "not a date"}}
			})

			It("should show the date as stored", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(renderer.rendered[0][0].Date).To(Equal("not a date"))
			})
		})

		When("the store answers 404", func() {
			BeforeEach(func() {
				store.listErr = bill.MarkAs(errors.New("Erreur 404"), bill.ErrNotFound)
			})

			It("returns the error", func() {
				Expect(bill.IsNotFound(err)).To(BeTrue())
			})

			It("should render the error instead of the list", func() {
				Expect(renderer.rendered).To(BeEmpty())
				Expect(renderer.errors).To(ConsistOf(ErrorPayload{Message: "Erreur 404", Kind: KindNotFound}))
			})
		})

		When("the store answers 500", func() {
			BeforeEach(func() {
				store.listErr = bill.MarkAs(errors.New("Erreur 500"), bill.ErrServer)
			})

			It("should render the error instead of the list", func() {
				Expect(err).To(HaveOccurred())
				Expect(renderer.rendered).To(BeEmpty())
				Expect(renderer.errors).To(ConsistOf(ErrorPayload{Message: "Erreur 500", Kind: KindServer}))
			})
		})

		When("the store cannot be reached", func() {
			BeforeEach(func() {
				store.listErr = bill.MarkAs(errors.New("connection refused"), bill.ErrNetwork)
			})

			It("should render a network error", func() {
				Expect(renderer.errors).To(ConsistOf(HaveField("Kind", KindNetwork)))
			})
		})

		When("the view was detached", func() {
			BeforeEach(func() {
				store.bills = []bill.Bill{{ID: "1", Email: ownerEmail, Date: "2022-08-20"}}
				list.Detach()
			})

			It("should not render anything", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(renderer.rendered).To(BeEmpty())
				Expect(renderer.errors).To(BeEmpty())
			})
		})
	})

	Describe("HandleNavigateToCreate", func() {
		It("should navigate to the new bill form", func() {
			list.HandleNavigateToCreate()
			Expect(nav.routes).To(Equal([]Route{RouteNewBill}))
		})
	})

	Describe("HandleInspectReceipt", func() {
		When("the bill has a receipt", func() {
			It("should show the receipt", func() {
				list.HandleInspectReceipt(bill.Summary{ID: "1", FileURL: "/api/files/a.jpg", FileName: "a.jpg"})
				Expect(viewer.shown).To(ConsistOf(Receipt{URL: "/api/files/a.jpg", FileName: "a.jpg"}))
			})
		})

		When("the bill has no receipt", func() {
			It("should do nothing", func() {
				list.HandleInspectReceipt(bill.Summary{ID: "1"})
				Expect(viewer.shown).To(BeEmpty())
			})
		})
	})
})
