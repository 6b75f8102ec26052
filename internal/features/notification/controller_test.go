package notification

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"innoclub/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// stubNotificationService recognizes a single notification id as readable.
type stubNotificationService struct {
	NotificationService
	knownID string
	marked  []string
}

func (s *stubNotificationService) MarkAsRead(ctx context.Context, id string, userID primitive.ObjectID) error {
	if id != s.knownID {
		return mongo.ErrNoDocuments
	}
	s.marked = append(s.marked, id)
	return nil
}

func newMarkAsReadTestApp(svc NotificationService) *fiber.App {
	ctrl := NewNotificationController(svc)
	app := fiber.New()
	app.Put("/api/notifications/:id/read", func(c *fiber.Ctx) error {
		c.Locals(utils.UserClaimsKey, &utils.UserClaims{UserID: primitive.NewObjectID().Hex()})
		return c.Next()
	}, ctrl.MarkAsRead)
	return app
}

func TestMarkAsReadUnknownIDIs404(t *testing.T) {
	svc := &stubNotificationService{knownID: primitive.NewObjectID().Hex()}
	app := newMarkAsReadTestApp(svc)

	req := httptest.NewRequest("PUT", "/api/notifications/"+primitive.NewObjectID().Hex()+"/read", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["success"] != false {
		t.Errorf("success = %v, want false", payload["success"])
	}
}

func TestMarkAsReadKnownID(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	svc := &stubNotificationService{knownID: id}
	app := newMarkAsReadTestApp(svc)

	req := httptest.NewRequest("PUT", "/api/notifications/"+id+"/read", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(svc.marked) != 1 || svc.marked[0] != id {
		t.Errorf("marked = %v, want [%s]", svc.marked, id)
	}
}
