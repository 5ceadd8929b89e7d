package workflow

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/billed/internal/bill"
)

var _ = Describe("Integration", func() {
	var (
		ctx      context.Context
		db       *bill.BoltDB
		storage  *bill.LocalStorage
		server   *bill.Server
		ghServer *ghttp.Server
		client   *bill.Client
		session  Session
		nav      *mockNavigator
		renderer *mockRenderer
		view     *mockFormView
	)

	BeforeEach(func() {
		ctx = context.Background()
		tempDir := GinkgoT().TempDir()

		var err error
		db, err = bill.NewBoltDB(filepath.Join(tempDir, "billed.db"))
		Expect(err).NotTo(HaveOccurred())

		storage, err = bill.NewLocalStorage(filepath.Join(tempDir, "receipts"))
		Expect(err).NotTo(HaveOccurred())

		auth := bill.BasicAuth{Username: "admin", Password: "secret"}
		server = bill.NewServerWithMux(bill.NewService(db, storage), auth, http.NewServeMux())
		ghServer = ghttp.NewServer()

		client, err = bill.NewClient(bill.ClientConfig{
			BaseURL:   ghServer.URL(),
			BasicAuth: auth,
			Timeout:   5 * time.Second,
		})
		Expect(err).NotTo(HaveOccurred())

		session = Session{Email: ownerEmail, Type: "Employee"}
		nav = &mockNavigator{}
		renderer = &mockRenderer{}
		view = &mockFormView{}
	})

	AfterEach(func() {
		if ghServer != nil {
			ghServer.Close()
		}
		if db != nil {
			db.Close()
		}
	})

	It("should upload a receipt, create the bill and list it", func() {
		// upload, create, list
		ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP, server.ServeHTTP)

		newBill := NewNewBill(client, session, nav, view)
		Expect(newBill.HandleFileSelected(ctx, bill.AttachedFile{
			Name:        "receipt.jpeg",
			ContentType: "image/jpeg",
			Body:        bytes.NewReader(jpegData),
		})).To(Succeed())

		fileURL, fileName := newBill.Receipt()
		Expect(fileURL).To(HavePrefix(ghServer.URL() + bill.FileURLPrefix))
		Expect(fileName).To(Equal("receipt.jpeg"))

		Expect(newBill.HandleSubmit(ctx, bill.Form{
			Type:       "Transports",
			Name:       "expense name test",
			Date:       "2022-08-20",
			Amount:     "300",
			VAT:        "60",
			Pct:        "25",
			Commentary: "expense comentary test",
		})).To(Succeed())
		Expect(nav.routes).To(Equal([]Route{RouteBills}))

		stored, err := db.ListBills(ownerEmail)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored).To(HaveLen(1))
		Expect(stored[0].Status).To(Equal(bill.StatusPending))
		Expect(stored[0].FileURL).To(Equal(fileURL))

		list := NewBillsList(client, session, nav, renderer, &mockViewer{})
		Expect(list.Activate(ctx)).To(Succeed())
		Expect(renderer.rendered).To(HaveLen(1))
		Expect(renderer.rendered[0]).To(ConsistOf(And(
			HaveField("Name", "expense name test"),
			HaveField("Date", "20 Aoû. 22"),
			HaveField("Status", "En attente"),
		)))
	})

	It("should refuse a file that is not a picture once uploaded", func() {
		ghServer.AppendHandlers(server.ServeHTTP)

		newBill := NewNewBill(client, session, nav, view)
		err := newBill.HandleFileSelected(ctx, bill.AttachedFile{
			Name:        "fake.png",
			ContentType: "image/png",
			Body:        bytes.NewReader([]byte("definitely not a png")),
		})
		Expect(bill.IsNotPicture(err)).To(BeTrue())
		Expect(view.cleared).To(Equal(1))
		Expect(view.diagnostics).To(ConsistOf("the uploaded file is not picture type"))

		err = newBill.HandleSubmit(ctx, bill.Form{Type: "Transports", Name: "n", Date: "2022-08-20", Amount: "1"})
		Expect(errors.Is(err, bill.ErrReceiptRequired)).To(BeTrue())
		Expect(ghServer.ReceivedRequests()).To(HaveLen(1))
	})

	It("should show the store failure when credentials are wrong", func() {
		ghServer.AppendHandlers(server.ServeHTTP)

		unauthorized, err := bill.NewClient(bill.ClientConfig{BaseURL: ghServer.URL()})
		Expect(err).NotTo(HaveOccurred())

		list := NewBillsList(unauthorized, session, nav, renderer, &mockViewer{})
		Expect(list.Activate(ctx)).NotTo(Succeed())
		Expect(renderer.rendered).To(BeEmpty())
		Expect(renderer.errors).To(ConsistOf(HaveField("Message", HavePrefix("Erreur 401"))))
	})
})
