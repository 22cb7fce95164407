package service

import (
	"context"
	"testing"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeCommandeRepo struct {
	byID map[uuid.UUID]*model.Commande
}

func newFakeCommandeRepo() *fakeCommandeRepo {
	return &fakeCommandeRepo{byID: map[uuid.UUID]*model.Commande{}}
}

func cloneCommande(c *model.Commande) *model.Commande {
	cp := *c
	cp.Items = append([]model.CommandeItem(nil), c.Items...)
	return &cp
}

func (r *fakeCommandeRepo) Create(_ context.Context, c *model.Commande) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	for i := range c.Items {
		if c.Items[i].ID == uuid.Nil {
			c.Items[i].ID = uuid.New()
		}
		c.Items[i].CommandeID = c.ID
	}
	r.byID[c.ID] = cloneCommande(c)
	return nil
}

func (r *fakeCommandeRepo) Save(_ context.Context, c *model.Commande) error {
	r.byID[c.ID] = cloneCommande(c)
	return nil
}

func (r *fakeCommandeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Commande, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneCommande(c), nil
}

func (r *fakeCommandeRepo) FindByCode(_ context.Context, code string) (*model.Commande, error) {
	for _, c := range r.byID {
		if c.Code == code {
			return cloneCommande(c), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCommandeRepo) List(_ context.Context, status string, _, _ int) ([]model.Commande, int64, error) {
	var out []model.Commande
	for _, c := range r.byID {
		if status == "" || c.Status == status {
			out = append(out, *cloneCommande(c))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeCommandeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func newCommandeTestService() (CommandeService, *fakeCommandeRepo) {
	repo := newFakeCommandeRepo()
	return NewCommandeService(repo, fakeTxManager{}, nil), repo
}

func newCakeOrder(t *testing.T, svc CommandeService, avance string) CommandeResponse {
	t.Helper()
	res, err := svc.CreateCommande(context.Background(), CreateCommandeRequest{
		ClientPhone: "0611223344",
		Description: "birthday cake, chocolate",
		Items: []CommandeItemRequest{
			{Name: "Gateau anniversaire", Price: "45.50", Quantity: 1},
			{Name: "Mini tartelettes", Price: "2.25", Quantity: 10},
		},
		Avance: avance,
	})
	require.NoError(t, err)
	return res
}

func TestCreateCommandeComputesTotals(t *testing.T) {
	svc, _ := newCommandeTestService()

	res := newCakeOrder(t, svc, "20")

	require.True(t, res.Total.Equal(dec("68")))
	require.True(t, res.Avance.Equal(dec("20")))
	require.True(t, res.Reste.Equal(dec("48")))
	require.Equal(t, model.CommandePending, res.Status)
	require.Len(t, res.Items, 2)
}

func TestCreateCommandeCodeFormat(t *testing.T) {
	svc, _ := newCommandeTestService()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		res := newCakeOrder(t, svc, "")
		require.Len(t, res.Code, 6)
		for _, ch := range res.Code {
			require.Contains(t, codeAlphabet, string(ch))
		}
		require.False(t, seen[res.Code], "codes must be unique")
		seen[res.Code] = true
	}
}

func TestCreateCommandeRequiresItems(t *testing.T) {
	svc, _ := newCommandeTestService()

	_, err := svc.CreateCommande(context.Background(), CreateCommandeRequest{
		ClientPhone: "0611223344",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateCommandeAvanceExceedsTotal(t *testing.T) {
	svc, _ := newCommandeTestService()

	_, err := svc.CreateCommande(context.Background(), CreateCommandeRequest{
		ClientPhone: "0611223344",
		Items:       []CommandeItemRequest{{Name: "Croissant", Price: "1.50", Quantity: 2}},
		Avance:      "10",
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateCommandeNegativeItemPrice(t *testing.T) {
	svc, _ := newCommandeTestService()

	_, err := svc.CreateCommande(context.Background(), CreateCommandeRequest{
		ClientPhone: "0611223344",
		Items:       []CommandeItemRequest{{Name: "Croissant", Price: "-1", Quantity: 1}},
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetCommandeByCode(t *testing.T) {
	svc, _ := newCommandeTestService()
	created := newCakeOrder(t, svc, "")

	found, err := svc.GetCommandeByCode(context.Background(), created.Code)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.GetCommandeByCode(context.Background(), "ZZZZZZ")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateCommandeStatus(t *testing.T) {
	svc, repo := newCommandeTestService()
	created := newCakeOrder(t, svc, "")

	res, err := svc.UpdateStatus(context.Background(), created.ID.String(), UpdateCommandeStatusRequest{Status: model.CommandeReady})
	require.NoError(t, err)
	require.Equal(t, model.CommandeReady, res.Status)
	require.Equal(t, model.CommandeReady, repo.byID[created.ID].Status)

	_, err = svc.UpdateStatus(context.Background(), created.ID.String(), UpdateCommandeStatusRequest{Status: "burnt"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateCommandeAvanceRecomputesReste(t *testing.T) {
	svc, _ := newCommandeTestService()
	created := newCakeOrder(t, svc, "20")

	res, err := svc.UpdateAvance(context.Background(), created.ID.String(), UpdateCommandeAvanceRequest{Avance: "68"})
	require.NoError(t, err)
	require.True(t, res.Avance.Equal(dec("68")))
	require.True(t, res.Reste.IsZero())

	_, err = svc.UpdateAvance(context.Background(), created.ID.String(), UpdateCommandeAvanceRequest{Avance: "100"})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteCommande(t *testing.T) {
	svc, repo := newCommandeTestService()
	created := newCakeOrder(t, svc, "")

	require.NoError(t, svc.DeleteCommande(context.Background(), created.ID.String()))
	require.Empty(t, repo.byID)

	err := svc.DeleteCommande(context.Background(), created.ID.String())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetCommandesFiltersByStatus(t *testing.T) {
	svc, _ := newCommandeTestService()
	created := newCakeOrder(t, svc, "")
	newCakeOrder(t, svc, "")

	_, err := svc.UpdateStatus(context.Background(), created.ID.String(), UpdateCommandeStatusRequest{Status: model.CommandeCompleted})
	require.NoError(t, err)

	completed, total, err := svc.GetCommandes(context.Background(), model.CommandeCompleted, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, completed, 1)

	_, _, err = svc.GetCommandes(context.Background(), "bogus", 1, 10)
	require.ErrorIs(t, err, apperr.ErrValidation)
}
