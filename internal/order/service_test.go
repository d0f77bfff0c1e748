package order

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"dailydeals-be/internal/address"
	"dailydeals-be/internal/catalog"
	"dailydeals-be/internal/clock"
	"dailydeals-be/internal/config"
	"dailydeals-be/internal/drop"
	"dailydeals-be/internal/metrics"
	"dailydeals-be/internal/payment"
	"dailydeals-be/internal/shipping"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrderTx(ctx context.Context, o *Order, claims []DropClaim, decrements []StockDecrement) error {
	args := m.Called(ctx, o, claims, decrements)
	return args.Error(0)
}

func (m *MockRepository) GetDetail(ctx context.Context, id, userID uuid.UUID) (*Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) MarkPaid(ctx context.Context, paymentIntentID string, now time.Time) (bool, error) {
	args := m.Called(ctx, paymentIntentID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkPaymentFailed(ctx context.Context, paymentIntentID string, now time.Time) (bool, error) {
	args := m.Called(ctx, paymentIntentID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateStatusByTracking(ctx context.Context, trackingNumber string, status OrderStatus, now time.Time) error {
	args := m.Called(ctx, trackingNumber, status, now)
	return args.Error(0)
}

func (m *MockRepository) UpdateShippingDetails(ctx context.Context, orderID uuid.UUID, trackingNumber, courierService string, estimatedDelivery time.Time, now time.Time) error {
	args := m.Called(ctx, orderID, trackingNumber, courierService, estimatedDelivery, now)
	return args.Error(0)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) List(ctx context.Context, opts catalog.ListOptions, dayStart, dayEnd time.Time) ([]*catalog.ProductWithDrop, int64, error) {
	args := m.Called(ctx, opts, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*catalog.ProductWithDrop), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) GetForCheckout(ctx context.Context, id uuid.UUID, dayStart, dayEnd time.Time) (*catalog.ProductWithDrop, error) {
	args := m.Called(ctx, id, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductWithDrop), args.Error(1)
}

type MockDropRepository struct {
	mock.Mock
}

func (m *MockDropRepository) ReseedWindow(ctx context.Context, start, end time.Time, count int, times []time.Time) ([]*drop.FreeDrop, error) {
	args := m.Called(ctx, start, end, count, times)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*drop.FreeDrop), args.Error(1)
}

func (m *MockDropRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*drop.FreeDrop, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*drop.FreeDrop), args.Error(1)
}

func (m *MockDropRepository) UserClaimedBetween(ctx context.Context, productID, userID uuid.UUID, start, end time.Time) (bool, error) {
	args := m.Called(ctx, productID, userID, start, end)
	return args.Bool(0), args.Error(1)
}

type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*address.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*address.Address), args.Error(1)
}

func (m *MockAddressRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*address.Address, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*address.Address), args.Error(1)
}

func (m *MockAddressRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockAddressRepository) Create(ctx context.Context, addr *address.Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockAddressRepository) SetDefault(ctx context.Context, userID, addressID uuid.UUID) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) CreateIntent(ctx context.Context, params payment.CreateIntentParams) (*payment.Intent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentProvider) ConfirmPayment(ctx context.Context, intentID string) (*payment.Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentProvider) CancelPayment(ctx context.Context, intentID string) error {
	args := m.Called(ctx, intentID)
	return args.Error(0)
}

func (m *MockPaymentProvider) VerifyWebhook(rawBody []byte, signature string) error {
	args := m.Called(rawBody, signature)
	return args.Error(0)
}

type failingShipper struct{}

func (failingShipper) GetQuote(ctx context.Context, params shipping.CreateShipmentParams) ([]shipping.Quote, error) {
	return nil, errors.New("courier unreachable")
}

func (failingShipper) CreateShipment(ctx context.Context, params shipping.CreateShipmentParams) (*shipping.Shipment, error) {
	return nil, errors.New("courier unreachable")
}

func (failingShipper) TrackShipment(ctx context.Context, trackingNumber string) (*shipping.Shipment, error) {
	return nil, errors.New("courier unreachable")
}

func testPricing() Pricing {
	return Pricing{
		FreeShippingThresholdCents: 50000,
		FlatShippingFeeCents:       6500,
		VATMode:                    config.VATInclusive,
		VATRatePercent:             15,
		MockPayments:               true,
	}
}

type checkoutFixture struct {
	repo        *MockRepository
	catalogRepo *MockCatalogRepository
	dropRepo    *MockDropRepository
	addressRepo *MockAddressRepository
	payments    *MockPaymentProvider
	shipper     shipping.Provider
	met         *metrics.Checkout
	now         time.Time
	svc         Service
}

func newCheckoutFixture(pricing Pricing, shipper shipping.Provider) *checkoutFixture {
	f := &checkoutFixture{
		repo:        new(MockRepository),
		catalogRepo: new(MockCatalogRepository),
		dropRepo:    new(MockDropRepository),
		addressRepo: new(MockAddressRepository),
		payments:    new(MockPaymentProvider),
		shipper:     shipper,
		met:         metrics.NewCheckout(),
		now:         time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC),
	}
	f.svc = NewServiceWithRand(
		f.repo, f.catalogRepo, f.dropRepo, f.addressRepo,
		f.payments, f.shipper, clock.Fixed(f.now), pricing, f.met,
		rand.New(rand.NewSource(42)),
	)
	return f
}

func activeProduct(priceCents int64, stock int) catalog.Product {
	return catalog.Product{
		ID:         uuid.New(),
		Name:       "Test Product",
		PriceCents: priceCents,
		Stock:      stock,
		Active:     true,
	}
}

func TestService_Checkout_MixedCartWithActiveDrop(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())

	earbuds := activeProduct(30000, 10)
	kettle := activeProduct(50000, 3)
	kettleDrop := &drop.FreeDrop{
		ID:        uuid.New(),
		ProductID: kettle.ID,
		DropAt:    f.now.Add(-time.Hour),
	}

	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, earbuds.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: earbuds}, nil)
	f.catalogRepo.On("GetForCheckout", ctx, kettle.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: kettle, Drop: kettleDrop}, nil)
	f.dropRepo.On("UserClaimedBetween", ctx, kettle.ID, userID, dayStart, dayEnd).
		Return(false, nil)

	f.payments.On("CreateIntent", ctx, mock.MatchedBy(func(p payment.CreateIntentParams) bool {
		return p.AmountCents == 60000 && p.Currency == "ZAR"
	})).Return(&payment.Intent{ID: "mock_pi_1", Status: payment.StatusPending}, nil)
	f.payments.On("ConfirmPayment", ctx, "mock_pi_1").
		Return(&payment.Intent{ID: "mock_pi_1", Status: payment.StatusSucceeded}, nil)

	var committed *Order
	f.repo.On("CreateOrderTx", ctx, mock.Anything,
		mock.MatchedBy(func(claims []DropClaim) bool {
			return len(claims) == 1 && claims[0].DropID == kettleDrop.ID && claims[0].UserID == userID
		}),
		mock.MatchedBy(func(decs []StockDecrement) bool {
			return len(decs) == 2
		}),
	).Run(func(args mock.Arguments) {
		committed = args.Get(1).(*Order)
	}).Return(nil)

	res, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines: []CartLine{
			{ProductID: earbuds.ID, Quantity: 2},
			{ProductID: kettle.ID, Quantity: 1},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, committed)

	// subtotal 600.00: two paid earbuds plus a free kettle; over the
	// threshold, so shipping is free.
	assert.Equal(t, int64(60000), committed.SubtotalCents)
	assert.Equal(t, int64(0), committed.ShippingCents)
	assert.Equal(t, int64(0), committed.TaxCents)
	assert.Equal(t, committed.SubtotalCents+committed.ShippingCents+committed.TaxCents, committed.TotalCents)

	assert.Equal(t, PaymentPaid, res.PaymentStatus)
	assert.Equal(t, StatusConfirmed, committed.Status)
	assert.True(t, strings.HasPrefix(res.OrderNumber, "ORD-"))

	require.Len(t, committed.Items, 2)
	assert.Equal(t, int64(30000), committed.Items[0].PriceCents)
	assert.Equal(t, int64(0), committed.Items[1].PriceCents)

	assert.Equal(t, uint64(1), f.met.OrdersCreated.Load())
	assert.Equal(t, uint64(1), f.met.DropsClaimed.Load())
	f.repo.AssertExpectations(t)
}

func TestService_Checkout_FreeDropQuantityExceeded(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())

	kettle := activeProduct(50000, 3)
	kettleDrop := &drop.FreeDrop{
		ID:        uuid.New(),
		ProductID: kettle.ID,
		DropAt:    f.now.Add(-time.Hour),
	}

	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, kettle.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: kettle, Drop: kettleDrop}, nil)

	_, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines: []CartLine{{ProductID: kettle.ID, Quantity: 2}},
	})

	assert.ErrorIs(t, err, ErrFreeDropQuantityExceeded)
	f.repo.AssertNotCalled(t, "CreateOrderTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, uint64(0), f.met.OrdersCreated.Load())
}

func TestService_Checkout_AlreadyClaimedToday(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())

	kettle := activeProduct(50000, 3)
	kettleDrop := &drop.FreeDrop{
		ID:        uuid.New(),
		ProductID: kettle.ID,
		DropAt:    f.now.Add(-time.Hour),
	}

	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, kettle.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: kettle, Drop: kettleDrop}, nil)
	f.dropRepo.On("UserClaimedBetween", ctx, kettle.ID, userID, dayStart, dayEnd).
		Return(true, nil)

	_, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines: []CartLine{{ProductID: kettle.ID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, ErrAlreadyClaimedToday)
	f.repo.AssertNotCalled(t, "CreateOrderTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Checkout_Preconditions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("EmptyCart", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		_, err := f.svc.Checkout(ctx, userID, CheckoutInput{})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		_, err := f.svc.Checkout(ctx, userID, CheckoutInput{
			Lines: []CartLine{{ProductID: uuid.New(), Quantity: 0}},
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("InactiveProduct", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		p := activeProduct(10000, 5)
		p.Active = false

		dayStart, dayEnd := clock.DayBounds(f.now)
		f.catalogRepo.On("GetForCheckout", ctx, p.ID, dayStart, dayEnd).
			Return(&catalog.ProductWithDrop{Product: p}, nil)

		_, err := f.svc.Checkout(ctx, userID, CheckoutInput{
			Lines: []CartLine{{ProductID: p.ID, Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})

	t.Run("NotEnoughStock", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		p := activeProduct(10000, 1)

		dayStart, dayEnd := clock.DayBounds(f.now)
		f.catalogRepo.On("GetForCheckout", ctx, p.ID, dayStart, dayEnd).
			Return(&catalog.ProductWithDrop{Product: p}, nil)

		_, err := f.svc.Checkout(ctx, userID, CheckoutInput{
			Lines: []CartLine{{ProductID: p.ID, Quantity: 3}},
		})
		assert.ErrorIs(t, err, ErrInsufficientStock)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		id := uuid.New()

		dayStart, dayEnd := clock.DayBounds(f.now)
		f.catalogRepo.On("GetForCheckout", ctx, id, dayStart, dayEnd).
			Return(nil, catalog.ErrProductNotFound)

		_, err := f.svc.Checkout(ctx, userID, CheckoutInput{
			Lines: []CartLine{{ProductID: id, Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrProductUnavailable)
	})
}

func TestService_Checkout_FlatFeeBelowThreshold(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())

	p := activeProduct(20000, 5)
	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, p.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: p}, nil)

	f.payments.On("CreateIntent", ctx, mock.MatchedBy(func(params payment.CreateIntentParams) bool {
		return params.AmountCents == 26500
	})).Return(&payment.Intent{ID: "mock_pi_2", Status: payment.StatusPending}, nil)
	f.payments.On("ConfirmPayment", ctx, "mock_pi_2").
		Return(&payment.Intent{ID: "mock_pi_2", Status: payment.StatusSucceeded}, nil)

	var committed *Order
	f.repo.On("CreateOrderTx", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { committed = args.Get(1).(*Order) }).
		Return(nil)

	res, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines: []CartLine{{ProductID: p.ID, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(6500), committed.ShippingCents)
	assert.Equal(t, int64(26500), res.TotalCents)
}

func TestService_Checkout_ExclusiveVAT(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	pricing := testPricing()
	pricing.VATMode = config.VATExclusive
	f := newCheckoutFixture(pricing, shipping.NewMockProvider())

	p := activeProduct(100000, 5)
	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, p.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: p}, nil)

	f.payments.On("CreateIntent", ctx, mock.MatchedBy(func(params payment.CreateIntentParams) bool {
		// 1000.00 subtotal + 0 shipping + 150.00 VAT
		return params.AmountCents == 115000
	})).Return(&payment.Intent{ID: "mock_pi_3", Status: payment.StatusPending}, nil)
	f.payments.On("ConfirmPayment", ctx, "mock_pi_3").
		Return(&payment.Intent{ID: "mock_pi_3", Status: payment.StatusSucceeded}, nil)

	f.repo.On("CreateOrderTx", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines: []CartLine{{ProductID: p.ID, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(115000), res.TotalCents)
}

func TestService_Checkout_CommitFailureCancelsPayment(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())

	p := activeProduct(20000, 5)
	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, p.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: p}, nil)

	f.payments.On("CreateIntent", ctx, mock.Anything).
		Return(&payment.Intent{ID: "mock_pi_4", Status: payment.StatusPending}, nil)
	f.payments.On("ConfirmPayment", ctx, "mock_pi_4").
		Return(&payment.Intent{ID: "mock_pi_4", Status: payment.StatusSucceeded}, nil)
	f.payments.On("CancelPayment", ctx, "mock_pi_4").Return(nil)

	f.repo.On("CreateOrderTx", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(ErrDropNoLongerAvailable)

	_, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines: []CartLine{{ProductID: p.ID, Quantity: 1}},
	})

	assert.ErrorIs(t, err, ErrDropNoLongerAvailable)
	f.payments.AssertCalled(t, "CancelPayment", ctx, "mock_pi_4")
	assert.Equal(t, uint64(1), f.met.CheckoutFailures.Load())
}

func TestService_Checkout_ShippingFailureNeverBlocksOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	addressID := uuid.New()
	f := newCheckoutFixture(testPricing(), failingShipper{})

	p := activeProduct(20000, 5)
	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, p.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: p}, nil)

	f.addressRepo.On("GetByID", ctx, addressID, userID).Return(&address.Address{
		ID:         addressID,
		UserID:     userID,
		FirstName:  "Thandi",
		LastName:   "Nkosi",
		Line1:      "12 Long Street",
		City:       "Cape Town",
		Province:   "Western Cape",
		PostalCode: "8000",
		Country:    "South Africa",
	}, nil)

	f.payments.On("CreateIntent", ctx, mock.Anything).
		Return(&payment.Intent{ID: "mock_pi_5", Status: payment.StatusPending}, nil)
	f.payments.On("ConfirmPayment", ctx, "mock_pi_5").
		Return(&payment.Intent{ID: "mock_pi_5", Status: payment.StatusSucceeded}, nil)

	var committed *Order
	f.repo.On("CreateOrderTx", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { committed = args.Get(1).(*Order) }).
		Return(nil)

	res, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines:     []CartLine{{ProductID: p.ID, Quantity: 1}},
		AddressID: &addressID,
	})

	require.NoError(t, err)
	assert.Nil(t, res.TrackingNumber)
	assert.Nil(t, committed.TrackingNumber)
	assert.Equal(t, uint64(1), f.met.ShipmentFailures.Load())
	assert.Equal(t, uint64(1), f.met.OrdersCreated.Load())
}

func TestService_Checkout_ShipmentFieldsFilledWhenCourierAccepts(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	addressID := uuid.New()
	f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())

	p := activeProduct(20000, 5)
	dayStart, dayEnd := clock.DayBounds(f.now)
	f.catalogRepo.On("GetForCheckout", ctx, p.ID, dayStart, dayEnd).
		Return(&catalog.ProductWithDrop{Product: p}, nil)

	f.addressRepo.On("GetByID", ctx, addressID, userID).Return(&address.Address{
		ID:      addressID,
		UserID:  userID,
		Line1:   "12 Long Street",
		City:    "Cape Town",
		Country: "South Africa",
	}, nil)

	f.payments.On("CreateIntent", ctx, mock.Anything).
		Return(&payment.Intent{ID: "mock_pi_6", Status: payment.StatusPending}, nil)
	f.payments.On("ConfirmPayment", ctx, "mock_pi_6").
		Return(&payment.Intent{ID: "mock_pi_6", Status: payment.StatusSucceeded}, nil)

	var committed *Order
	f.repo.On("CreateOrderTx", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { committed = args.Get(1).(*Order) }).
		Return(nil)

	res, err := f.svc.Checkout(ctx, userID, CheckoutInput{
		Lines:     []CartLine{{ProductID: p.ID, Quantity: 1}},
		AddressID: &addressID,
	})

	require.NoError(t, err)
	require.NotNil(t, res.TrackingNumber)
	assert.True(t, strings.HasPrefix(*res.TrackingNumber, "TG-"))
	require.NotNil(t, committed.CourierService)
	assert.NotNil(t, committed.EstimatedDelivery)
	require.NotNil(t, committed.ShippingAddressID)
	assert.Equal(t, addressID, *committed.ShippingAddressID)
}

func TestService_PaymentWebhooks(t *testing.T) {
	ctx := context.Background()

	t.Run("AppliedIncrementsApplied", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		f.repo.On("MarkPaid", ctx, "pl_1", f.now).Return(true, nil)

		applied, err := f.svc.ConfirmPayment(ctx, "pl_1")
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, uint64(1), f.met.WebhooksApplied.Load())
		assert.Equal(t, uint64(0), f.met.WebhooksReplayed.Load())
	})

	t.Run("ReplayIncrementsReplayed", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		f.repo.On("MarkPaid", ctx, "pl_1", f.now).Return(false, nil)

		applied, err := f.svc.ConfirmPayment(ctx, "pl_1")
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, uint64(1), f.met.WebhooksReplayed.Load())
	})

	t.Run("FailurePropagatesNotFound", func(t *testing.T) {
		f := newCheckoutFixture(testPricing(), shipping.NewMockProvider())
		f.repo.On("MarkPaymentFailed", ctx, "pl_missing", f.now).Return(false, ErrOrderNotFound)

		_, err := f.svc.FailPayment(ctx, "pl_missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
