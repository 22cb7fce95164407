package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"
	"bakery-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func assignIDs(s *model.Supplier) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for i := range s.Vouchers {
		if s.Vouchers[i].ID == uuid.Nil {
			s.Vouchers[i].ID = uuid.New()
		}
		s.Vouchers[i].SupplierID = s.ID
	}
	for i := range s.Payments {
		if s.Payments[i].ID == uuid.Nil {
			s.Payments[i].ID = uuid.New()
		}
		s.Payments[i].SupplierID = s.ID
	}
}

func cloneSupplier(s *model.Supplier) *model.Supplier {
	out := *s
	out.Vouchers = make([]model.Voucher, len(s.Vouchers))
	for i, v := range s.Vouchers {
		out.Vouchers[i] = v
		out.Vouchers[i].Images = append([]string(nil), v.Images...)
	}
	out.Payments = append([]model.Payment(nil), s.Payments...)
	return &out
}

func (r *fakeSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	assignIDs(s)
	r.suppliers[s.ID] = cloneSupplier(s)
	return nil
}

func (r *fakeSupplierRepo) Save(_ context.Context, s *model.Supplier) error {
	assignIDs(s)
	r.suppliers[s.ID] = cloneSupplier(s)
	return nil
}

func (r *fakeSupplierRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneSupplier(s), nil
}

func (r *fakeSupplierRepo) FindAll(_ context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.suppliers {
		out = append(out, *cloneSupplier(s))
	}
	return out, nil
}

func (r *fakeSupplierRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.suppliers, id)
	return nil
}

type fakeBlobs struct {
	objects   map[string]bool
	seq       int
	failAfter int // fail every Put once this many have succeeded; -1 = never
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string]bool), failAfter: -1}
}

func (b *fakeBlobs) Put(prefix, originalName string, _ io.Reader) (string, error) {
	if b.failAfter >= 0 && b.seq >= b.failAfter {
		return "", errors.New("disk full")
	}
	b.seq++
	name := fmt.Sprintf("%s_%d%s", prefix, b.seq, filepath.Ext(originalName))
	b.objects[name] = true
	return name, nil
}

func (b *fakeBlobs) Delete(ref string) error {
	delete(b.objects, ref)
	return nil
}

func (b *fakeBlobs) URL(baseURL, ref string) string {
	return baseURL + "/uploads/" + ref
}

func up(name, content string) storage.Upload {
	return storage.Upload{OriginalName: name, Content: strings.NewReader(content)}
}

func newTestService() (SupplierService, *fakeSupplierRepo, *fakeBlobs) {
	repo := newFakeSupplierRepo()
	blobs := newFakeBlobs()
	return NewSupplierService(repo, blobs, fakeTxManager{}), repo, blobs
}

func mustCreate(t *testing.T, svc SupplierService, req CreateSupplierRequest) SupplierResponse {
	t.Helper()
	res, err := svc.CreateSupplier(context.Background(), req, "http://test")
	require.NoError(t, err)
	return res
}

func baseSupplier(t *testing.T, svc SupplierService) SupplierResponse {
	t.Helper()
	return mustCreate(t, svc, CreateSupplierRequest{
		FullName: "Ahmed Farine",
		Phone:    "0600000000",
		Category: model.CategoryPackaging,
	})
}

// --- Create ---

func TestCreateSupplierValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateSupplier(ctx, CreateSupplierRequest{Phone: "06", Category: "fruits"}, "")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateSupplier(ctx, CreateSupplierRequest{FullName: "A", Category: "fruits"}, "")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateSupplier(ctx, CreateSupplierRequest{FullName: "A", Phone: "06", Category: "gold"}, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateSupplierOneVoucherPerImage(t *testing.T) {
	svc, _, blobs := newTestService()

	res := mustCreate(t, svc, CreateSupplierRequest{
		FullName: "Laiterie Atlas",
		Phone:    "0611111111",
		Category: model.CategoryDairy,
		Amount:   "120.50",
		Images:   []storage.Upload{up("a.jpg", "x"), up("b.jpg", "y"), up("c.jpg", "z")},
	})

	require.Len(t, res.Vouchers, 3)
	for _, v := range res.Vouchers {
		require.True(t, v.Amount.Equal(dec("120.50")))
		require.Len(t, v.Images, 1)
		require.True(t, strings.HasPrefix(v.Images[0].URL, "http://test/uploads/"))
	}
	require.True(t, res.TotalPurchased.Equal(dec("361.50")))
	require.Len(t, blobs.objects, 3)
}

func TestCreateSupplierAllOrNothingOnBlobFailure(t *testing.T) {
	repo := newFakeSupplierRepo()
	blobs := newFakeBlobs()
	blobs.failAfter = 1 // second image fails
	svc := NewSupplierService(repo, blobs, fakeTxManager{})

	_, err := svc.CreateSupplier(context.Background(), CreateSupplierRequest{
		FullName: "X",
		Phone:    "06",
		Category: model.CategoryOther,
		Images:   []storage.Upload{up("a.jpg", "x"), up("b.jpg", "y")},
	}, "")

	require.ErrorIs(t, err, apperr.ErrStorage)
	require.Empty(t, repo.suppliers, "no partial supplier may be persisted")
	require.Empty(t, blobs.objects, "stored blobs from the failed batch are unwound")
}

// --- Vouchers ---

func TestAddVoucherAccumulatesTotal(t *testing.T) {
	svc, repo, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	_, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: "100"}, "")
	require.NoError(t, err)
	res, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: "45.25"}, "")
	require.NoError(t, err)

	require.True(t, res.TotalPurchased.Equal(dec("145.25")))

	stored := repo.suppliers[sup.ID]
	require.True(t, stored.TotalPurchased.Equal(sumVoucherAmounts(stored.Vouchers)))
}

func TestAddVoucherZeroAmountPermitted(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)

	res, err := svc.AddVoucher(context.Background(), sup.ID.String(), AddVoucherRequest{Amount: ""}, "")
	require.NoError(t, err)
	require.True(t, res.Vouchers[0].Amount.IsZero())
	require.False(t, res.Vouchers[0].IsPaid)
}

func TestAddVoucherNegativeAmountRejected(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)

	_, err := svc.AddVoucher(context.Background(), sup.ID.String(), AddVoucherRequest{Amount: "-5"}, "")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddVoucherSupplierMissing(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddVoucher(context.Background(), uuid.NewString(), AddVoucherRequest{Amount: "10"}, "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddVoucherImagesAppends(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	res, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{
		Amount: "10",
		Images: []storage.Upload{up("a.jpg", "x")},
	}, "")
	require.NoError(t, err)
	voucherID := res.Vouchers[0].ID.String()

	res, err = svc.AddVoucherImages(ctx, sup.ID.String(), voucherID, []storage.Upload{up("b.jpg", "y"), up("c.jpg", "z")}, "")
	require.NoError(t, err)
	require.Len(t, res.Vouchers[0].Images, 3)
	// amount and paid state are untouched by an image append
	require.True(t, res.Vouchers[0].Amount.Equal(dec("10")))
	require.True(t, res.Vouchers[0].PaidAmount.IsZero())
}

func TestDeleteVoucherImageIsIdempotent(t *testing.T) {
	svc, _, blobs := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	res, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{
		Amount: "10",
		Images: []storage.Upload{up("a.jpg", "x")},
	}, "")
	require.NoError(t, err)
	voucherID := res.Vouchers[0].ID.String()
	imageRef := res.Vouchers[0].Images[0].Filename

	require.NoError(t, svc.DeleteVoucherImage(ctx, sup.ID.String(), voucherID, imageRef))
	require.Empty(t, blobs.objects)
	// second delete of the same reference must not error
	require.NoError(t, svc.DeleteVoucherImage(ctx, sup.ID.String(), voucherID, imageRef))

	got, err := svc.GetVoucher(ctx, sup.ID.String(), voucherID, "")
	require.NoError(t, err)
	require.Empty(t, got.Images)
}

// --- Payments ---

func TestRecordPaymentValidation(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: "0"}, "")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: "abc"}, "")
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.RecordPayment(ctx, uuid.NewString(), RecordPaymentRequest{Amount: "10"}, "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRecordPaymentTargeted(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	res, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: "100"}, "")
	require.NoError(t, err)
	target := res.Vouchers[0].ID

	_, err = svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: "40", VoucherID: target.String()}, "")
	require.NoError(t, err)
	res, err = svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: "80", VoucherID: target.String()}, "")
	require.NoError(t, err)

	require.True(t, res.Vouchers[0].PaidAmount.Equal(dec("100")), "applied amount caps at the outstanding balance")
	require.True(t, res.Vouchers[0].IsPaid)
	// raw amounts land in the legacy total regardless of allocation
	require.True(t, res.TotalPaid.Equal(dec("120")))
	require.Len(t, res.Payments, 2)
	require.Equal(t, target, *res.Payments[1].VoucherID)
}

func TestRecordPaymentTargetedUnknownVoucher(t *testing.T) {
	svc, repo, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: "10", VoucherID: uuid.NewString()}, "")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	stored := repo.suppliers[sup.ID]
	require.Empty(t, stored.Payments, "nothing is recorded when the target voucher is unknown")
	require.True(t, stored.TotalPaid.IsZero())
}

func TestRecordPaymentSweep(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	_, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: "50"}, "")
	require.NoError(t, err)
	_, err = svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: "30"}, "")
	require.NoError(t, err)

	res, err := svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: "60"}, "")
	require.NoError(t, err)

	require.True(t, res.Vouchers[0].PaidAmount.Equal(dec("50")))
	require.True(t, res.Vouchers[0].IsPaid)
	require.True(t, res.Vouchers[1].PaidAmount.Equal(dec("10")))
	require.False(t, res.Vouchers[1].IsPaid)
	require.True(t, res.TotalPaid.Equal(dec("60")))
	require.Nil(t, res.Payments[0].VoucherID)
}

func TestRecordPaymentLegacyTotalUnbounded(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	_, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: "20"}, "")
	require.NoError(t, err)

	res, err := svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: "500"}, "")
	require.NoError(t, err)

	require.True(t, res.TotalPaid.Equal(dec("500")), "legacy total grows by the raw amount even past the outstanding sum")
	require.True(t, res.Vouchers[0].PaidAmount.Equal(dec("20")))
}

func TestPaymentSequencePreservesInvariants(t *testing.T) {
	svc, repo, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	amounts := []string{"80", "15.75", "0", "120"}
	for _, a := range amounts {
		_, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: a}, "")
		require.NoError(t, err)
	}
	payments := []string{"10", "90.25", "7", "300"}
	for _, p := range payments {
		_, err := svc.RecordPayment(ctx, sup.ID.String(), RecordPaymentRequest{Amount: p}, "")
		require.NoError(t, err)

		stored := repo.suppliers[sup.ID]
		requireInvariants(t, stored.Vouchers)
		require.True(t, stored.TotalPurchased.Equal(sumVoucherAmounts(stored.Vouchers)))

		paid := decimal.Zero
		for _, rec := range stored.Payments {
			paid = paid.Add(rec.Amount)
		}
		require.True(t, stored.TotalPaid.Equal(paid))
	}
}

// --- Update / delete ---

func TestUpdateSupplierPartialFields(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)

	newPhone := "0622222222"
	hidden := true
	res, err := svc.UpdateSupplier(context.Background(), sup.ID.String(), UpdateSupplierRequest{
		Phone:    &newPhone,
		IsHidden: &hidden,
	}, "")
	require.NoError(t, err)

	require.Equal(t, "Ahmed Farine", res.FullName, "unsupplied fields stay put")
	require.Equal(t, newPhone, res.Phone)
	require.True(t, res.IsHidden)
}

func TestUpdateSupplierWithImagesAppendsVouchers(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)

	res, err := svc.UpdateSupplier(context.Background(), sup.ID.String(), UpdateSupplierRequest{
		Amount: "75",
		Images: []storage.Upload{up("a.jpg", "x"), up("b.jpg", "y")},
	}, "")
	require.NoError(t, err)

	require.Len(t, res.Vouchers, 2)
	require.True(t, res.TotalPurchased.Equal(dec("150")))
}

func TestToggleHidden(t *testing.T) {
	svc, _, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	res, err := svc.ToggleHidden(ctx, sup.ID.String(), true)
	require.NoError(t, err)
	require.True(t, res.IsHidden)

	res, err = svc.ToggleHidden(ctx, sup.ID.String(), false)
	require.NoError(t, err)
	require.False(t, res.IsHidden)
}

func TestDeleteSupplierCascadesBlobs(t *testing.T) {
	svc, repo, blobs := newTestService()
	ctx := context.Background()

	sup := mustCreate(t, svc, CreateSupplierRequest{
		FullName: "Verger Sud",
		Phone:    "0633333333",
		Category: model.CategoryFruits,
		Amount:   "10",
		Images:   []storage.Upload{up("a.jpg", "x"), up("b.jpg", "y")},
	})
	require.Len(t, blobs.objects, 2)

	require.NoError(t, svc.DeleteSupplier(ctx, sup.ID.String()))
	require.Empty(t, blobs.objects, "every referenced blob is removed")
	require.Empty(t, repo.suppliers)

	_, err := svc.GetSupplierByID(ctx, sup.ID.String(), "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteSupplierMissing(t *testing.T) {
	svc, _, _ := newTestService()
	err := svc.DeleteSupplier(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetWeeklyStats(t *testing.T) {
	svc, repo, _ := newTestService()
	sup := baseSupplier(t, svc)
	ctx := context.Background()

	_, err := svc.AddVoucher(ctx, sup.ID.String(), AddVoucherRequest{Amount: "50"}, "")
	require.NoError(t, err)

	// age one voucher out of the window by editing the stored aggregate
	stored := repo.suppliers[sup.ID]
	stored.Vouchers = append(stored.Vouchers, model.Voucher{
		ID:     uuid.New(),
		Amount: dec("100"),
		Date:   time.Now().Add(-8 * 24 * time.Hour),
	})

	stats, err := svc.GetWeeklyStats(ctx, sup.ID.String(), time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, stats.VoucherCount)
	require.True(t, stats.TotalVouchers.Equal(dec("50")))
}
