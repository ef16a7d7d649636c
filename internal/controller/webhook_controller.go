package controller

import (
	"encoding/json"

	"aroma-assistant-be/internal/dto"
	"aroma-assistant-be/internal/pkg/serverutils"
	"aroma-assistant-be/internal/service"
	"aroma-assistant-be/pkg/telegram"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Receive(ctx *fiber.Ctx) error
}

// webhookController accepts transport updates and hands them to the event
// bus. It never blocks on dialogue work: the consumer picks the update up
// asynchronously, so the webhook can always return quickly.
type webhookController struct {
	publisherService service.IPublisherService
}

func NewWebhookController(publisherService service.IPublisherService) IWebhookController {
	return &webhookController{
		publisherService: publisherService,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook/v1")
	h.Post("update", c.Receive)
}

func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	var upd telegram.Update
	if err := ctx.BodyParser(&upd); err != nil {
		return err
	}

	// Updates without a sender (channel posts, edits) are acknowledged and
	// dropped so Telegram does not redeliver them.
	if upd.UserID() == "" {
		return ctx.JSON(serverutils.SuccessResponse("Update ignored", dto.AcceptedResponse{Accepted: false}))
	}

	inbound := dto.InboundUpdate{
		UserID: upd.UserID(),
		Text:   upd.Message.Text,
	}
	if upd.Message.Voice != nil {
		inbound.AttachmentKind = dto.AttachmentKindVoice
		inbound.AttachmentRef = upd.Message.Voice.FileID
	}

	if err := serverutils.ValidateRequest(inbound); err != nil {
		return err
	}

	payload, err := json.Marshal(inbound)
	if err != nil {
		return err
	}
	if err := c.publisherService.Publish(ctx.UserContext(), payload); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Update accepted", dto.AcceptedResponse{Accepted: true}))
}
