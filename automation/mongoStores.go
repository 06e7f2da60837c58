package automation

import (
	"context"
	"time"

	"go-food-delivery/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func nowUTC() time.Time { return time.Now().UTC() }

// MongoOrderStore implements OrderStore over the order collection.
type MongoOrderStore struct {
	col *mongo.Collection
}

func NewMongoOrderStore(col *mongo.Collection) *MongoOrderStore {
	return &MongoOrderStore{col: col}
}

func (s *MongoOrderStore) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ApplyTransition performs the guarded write as a single document update.
// The terminal-state guard is part of the filter, so a timer racing a
// cancellation can never touch a frozen order.
func (s *MongoOrderStore) ApplyTransition(ctx context.Context, orderID string, u TransitionUpdate) (bool, error) {
	filter := bson.M{
		"order_id": orderID,
		"status":   bson.M{"$nin": []string{models.OrderStatusCancelled, models.OrderStatusCompleted}},
	}

	set := bson.M{"updated_at": u.At}
	if u.OrderStatus != "" {
		set["status"] = u.OrderStatus
	}
	if u.DeliveryStatus != "" {
		set["delivery.status"] = u.DeliveryStatus
	}
	if u.Milestone != "" {
		set["status_timestamps."+u.Milestone] = u.At
	}
	if u.Partner != nil {
		set["delivery_partner_id"] = u.Partner.Partner_id
		set["delivery.driver"] = driverSnapshot(u.Partner)
	}
	if u.RestaurantLocation != nil {
		set["delivery.restaurant_location"] = u.RestaurantLocation
		set["delivery.current_location"] = u.RestaurantLocation
	}
	if u.CustomerLocation != nil {
		set["delivery.customer_location"] = u.CustomerLocation
	}
	if u.CurrentLocation != nil {
		set["delivery.current_location"] = u.CurrentLocation
	}
	if u.EstimatedArrival != nil {
		set["delivery.estimated_arrival"] = u.EstimatedArrival
	}

	update := bson.M{"$set": set}
	if u.Entry != nil {
		update["$push"] = bson.M{"delivery.status_history": u.Entry}
	}

	result, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (s *MongoOrderStore) LastAssignedPartner(ctx context.Context, window int64) (string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(window).
		SetProjection(bson.M{"delivery_partner_id": 1})
	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return "", err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return "", err
		}
		if order.Delivery_partner_id != nil && *order.Delivery_partner_id != "" {
			return *order.Delivery_partner_id, nil
		}
	}
	return "", cursor.Err()
}

func driverSnapshot(p *models.DeliveryPartner) models.DeliveryDriver {
	snapshot := models.DeliveryDriver{Partner_id: p.Partner_id}
	if p.Name != nil {
		snapshot.Name = *p.Name
	}
	if p.Phone != nil {
		snapshot.Phone = *p.Phone
	}
	if p.Vehicle_type != nil {
		snapshot.Vehicle_type = *p.Vehicle_type
	}
	if p.Vehicle_number != nil {
		snapshot.Vehicle_number = *p.Vehicle_number
	}
	return snapshot
}

// MongoPartnerStore implements PartnerStore over the deliveryPartner collection.
type MongoPartnerStore struct {
	col *mongo.Collection
}

func NewMongoPartnerStore(col *mongo.Collection) *MongoPartnerStore {
	return &MongoPartnerStore{col: col}
}

func (s *MongoPartnerStore) ListActive(ctx context.Context) ([]models.DeliveryPartner, error) {
	filter := bson.M{"status": bson.M{"$in": []string{models.PartnerFree, models.PartnerBusy}}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var partners []models.DeliveryPartner
	if err := cursor.All(ctx, &partners); err != nil {
		return nil, err
	}
	return partners, nil
}

func (s *MongoPartnerStore) FindByID(ctx context.Context, partnerID string) (*models.DeliveryPartner, error) {
	var partner models.DeliveryPartner
	err := s.col.FindOne(ctx, bson.M{"partner_id": partnerID}).Decode(&partner)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (s *MongoPartnerStore) SetStatus(ctx context.Context, partnerID string, status string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"partner_id": partnerID},
		bson.M{"$set": bson.M{"status": status, "updated_at": nowUTC()}},
	)
	return err
}
