//go:build integration

package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kickboxbd/kickbox-backend/internal/database"
	"github.com/kickboxbd/kickbox-backend/internal/models"
)

var testClient *mongo.Client

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

// testMain starts a single node replica set; transactions need one.
func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		log.Printf("start mongo: %v", err)
		return 1
	}
	defer func() { _ = container.Terminate(context.Background()) }()

	code, _, err := container.Exec(ctx, []string{
		"mongosh", "--quiet", "--eval",
		`rs.initiate({_id: "rs0", members: [{_id: 0, host: "localhost:27017"}]})`,
	})
	if err != nil || code != 0 {
		log.Printf("initiate replica set: code=%d err=%v", code, err)
		return 1
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Printf("container host: %v", err)
		return 1
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		log.Printf("container port: %v", err)
		return 1
	}
	uri := fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port())

	// The node needs a moment to elect itself primary.
	deadline := time.Now().Add(time.Minute)
	for {
		testClient, err = database.Connect(ctx, uri)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Printf("connect: %v", err)
			return 1
		}
		time.Sleep(time.Second)
	}
	defer func() { _ = testClient.Disconnect(context.Background()) }()

	return m.Run()
}

func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	db := testClient.Database(fmt.Sprintf("kickbox_%d", time.Now().UnixNano()))
	t.Cleanup(func() { _ = db.Drop(context.Background()) })
	return db
}

func insertProduct(t *testing.T, s *Products, doc bson.M) primitive.ObjectID {
	t.Helper()
	id, err := s.Create(context.Background(), doc)
	require.NoError(t, err)
	return id
}

func TestProductsList(t *testing.T) {
	ctx := context.Background()
	s := NewProducts(testDB(t), "products", 5*time.Second)

	for i, name := range []string{"Air Runner", "Court Classic", "air max", "Trail (Pro)", "Sandal"} {
		insertProduct(t, s, bson.M{
			"name":     name,
			"category": "shoes",
			"price":    float64(100 + i*10),
			"popular":  i%2 == 0,
		})
	}

	t.Run("search is case insensitive substring", func(t *testing.T) {
		list, total, err := s.List(ctx, ProductQuery{Search: "AIR", Page: Page{Page: 1, Limit: 8}})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, list, 2)
	})

	t.Run("search metacharacters are literal", func(t *testing.T) {
		_, total, err := s.List(ctx, ProductQuery{Search: "(Pro)", Page: Page{Page: 1, Limit: 8}})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("total ignores pagination", func(t *testing.T) {
		list, total, err := s.List(ctx, ProductQuery{Sort: SortLowHigh, Page: Page{Page: 2, Limit: 2}})
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
		require.Len(t, list, 2)
		assert.Equal(t, "air max", list[0].Name)
		assert.Equal(t, "Trail (Pro)", list[1].Name)
	})

	t.Run("popular", func(t *testing.T) {
		popular := true
		_, total, err := s.List(ctx, ProductQuery{Popular: &popular, Page: Page{Page: 1, Limit: 8}})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})
}

func TestProductsCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewProducts(testDB(t), "products", 5*time.Second)

	id := insertProduct(t, s, bson.M{"name": "Runner", "category": "running", "price": 120.0, "stock": int64(4), "color": "blue"})

	p, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Runner", p.Name)
	assert.Equal(t, models.Units(4), p.Stock)
	assert.Equal(t, "blue", p.Extra["color"])

	require.NoError(t, s.Update(ctx, id, ProductUpdate{Set: bson.M{"price": 110.0}}))
	p, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 110.0, p.Price)
	assert.NotNil(t, p.UpdatedAt)

	missing := primitive.NewObjectID()
	assert.ErrorIs(t, s.Update(ctx, missing, ProductUpdate{Set: bson.M{"price": 1.0}}), ErrNotFound)
	_, err = s.Get(ctx, missing)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestProductsUpdateSwitchesStockModel(t *testing.T) {
	ctx := context.Background()
	s := NewProducts(testDB(t), "products", 5*time.Second)

	id := insertProduct(t, s, bson.M{
		"name":        "Court",
		"price":       90.0,
		"stock":       "",
		"stockBySize": bson.M{"41": int64(1), "42": int64(5)},
		"totalStock":  int64(6),
	})

	require.NoError(t, s.Update(ctx, id, ProductUpdate{
		Set:   bson.M{"stock": int64(5)},
		Unset: []string{"stockBySize", "totalStock"},
	}))

	p, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Units(5), p.Stock)
	assert.Empty(t, p.StockBySize)
	assert.Zero(t, p.TotalStock)
	assert.False(t, p.SizeVariant())

	require.NoError(t, s.AdjustStock(ctx, []models.StockAdjustment{{ProductID: id, Quantity: 2}}))
	p, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Units(3), p.Stock)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	s := NewProducts(testDB(t), "products", 5*time.Second)

	scalar := insertProduct(t, s, bson.M{"name": "Runner", "price": 100.0, "stock": int64(3)})
	sized := insertProduct(t, s, bson.M{
		"name":        "Court",
		"price":       90.0,
		"stock":       "",
		"stockBySize": bson.M{"41": int64(1), "42": int64(5)},
		"totalStock":  int64(6),
	})

	t.Run("decrements both models", func(t *testing.T) {
		err := s.AdjustStock(ctx, []models.StockAdjustment{
			{ProductID: scalar, Quantity: 2},
			{ProductID: sized, Quantity: 3, Size: "42"},
		})
		require.NoError(t, err)

		p, err := s.Get(ctx, scalar)
		require.NoError(t, err)
		assert.Equal(t, models.Units(1), p.Stock)

		p, err = s.Get(ctx, sized)
		require.NoError(t, err)
		assert.EqualValues(t, 2, p.StockBySize["42"])
		assert.EqualValues(t, 3, p.TotalStock)
	})

	t.Run("failure rolls back earlier items", func(t *testing.T) {
		err := s.AdjustStock(ctx, []models.StockAdjustment{
			{ProductID: scalar, Quantity: 1},
			{ProductID: sized, Quantity: 2, Size: "41"},
		})
		var oos *OutOfStockError
		require.ErrorAs(t, err, &oos)
		assert.Equal(t, "Size 41 out of stock for Court", oos.Error())

		p, err := s.Get(ctx, scalar)
		require.NoError(t, err)
		assert.Equal(t, models.Units(1), p.Stock)
	})

	t.Run("scalar over request", func(t *testing.T) {
		err := s.AdjustStock(ctx, []models.StockAdjustment{{ProductID: scalar, Quantity: 5}})
		var oos *OutOfStockError
		require.ErrorAs(t, err, &oos)
		assert.Equal(t, "Out of stock: Runner", oos.Error())

		p, err := s.Get(ctx, scalar)
		require.NoError(t, err)
		assert.Equal(t, models.Units(1), p.Stock)
	})

	t.Run("half size", func(t *testing.T) {
		half := insertProduct(t, s, bson.M{
			"name":        "Loafer",
			"price":       80.0,
			"stock":       "",
			"stockBySize": bson.M{"7.5": int64(2), "8": int64(1)},
			"totalStock":  int64(3),
		})

		require.NoError(t, s.AdjustStock(ctx, []models.StockAdjustment{{ProductID: half, Quantity: 2, Size: "7.5"}}))
		p, err := s.Get(ctx, half)
		require.NoError(t, err)
		assert.EqualValues(t, 0, p.StockBySize["7.5"])
		assert.EqualValues(t, 1, p.StockBySize["8"])
		assert.EqualValues(t, 1, p.TotalStock)

		err = s.AdjustStock(ctx, []models.StockAdjustment{{ProductID: half, Quantity: 1, Size: "7.5"}})
		var oos *OutOfStockError
		require.ErrorAs(t, err, &oos)
		assert.Equal(t, "Size 7.5 out of stock for Loafer", oos.Error())
	})

	t.Run("size required", func(t *testing.T) {
		err := s.AdjustStock(ctx, []models.StockAdjustment{{ProductID: sized, Quantity: 1}})
		var sr *SizeRequiredError
		assert.ErrorAs(t, err, &sr)
	})

	t.Run("missing product", func(t *testing.T) {
		err := s.AdjustStock(ctx, []models.StockAdjustment{{ProductID: primitive.NewObjectID(), Quantity: 1}})
		var nf *ProductNotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	s := NewOrders(testDB(t), "orders", 5*time.Second)

	now := time.Now().UTC().Truncate(time.Millisecond)
	order := &models.Order{
		Customer: models.Customer{
			CustomerName: "A", Email: "a@x.com", CustomerNumber: "01700000000",
			District: "Dhaka", Address: "X", DeliveryZone: "Y",
		},
		Products: []models.LineItem{{
			Name: "Shoe", Size: "42", Quantity: 1, Price: 1000,
			Extra: bson.M{"image": "shoe.jpg"},
		}},
		TotalAmount: 1060,
		Status:      models.OrderStatusPending,
		CreatedAt:   now,
		Extra:       bson.M{"deliveryCharge": 60.0, "paymentMethod": "cod"},
	}
	id, err := s.Create(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, id, order.ID)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.Equal(t, bson.M{"deliveryCharge": 60.0, "paymentMethod": "cod"}, got.Extra)
	require.Len(t, got.Products, 1)
	assert.Equal(t, bson.M{"image": "shoe.jpg"}, got.Products[0].Extra)

	require.NoError(t, s.UpdateStatus(ctx, id, models.OrderStatusConfirmed))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)

	list, total, err := s.List(ctx, OrderQuery{Search: "0170", Page: Page{Page: 1, Limit: 8}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, s.UpdateStatus(ctx, id, models.OrderStatusCanceled), ErrNotFound)
}
