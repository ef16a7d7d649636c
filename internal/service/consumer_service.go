package service

import (
	"context"
	"encoding/json"
	"sync"

	"aroma-assistant-be/internal/constant"
	"aroma-assistant-be/internal/dto"
	"aroma-assistant-be/internal/pkg/logger"
	"aroma-assistant-be/pkg/speech"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// VoiceFetcher resolves a transport file reference to its audio bytes
type VoiceFetcher interface {
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// mailboxDepth bounds how many turns one user can have queued. A full
// mailbox applies backpressure to that user's deliveries only.
const mailboxDepth = 32

// consumerService drains the inbound update topic and dispatches each update
// to the dialogue engine. Updates are acked on receipt and routed into a
// FIFO mailbox per user, each drained by its own worker: one user's turns
// run strictly in arrival order, while unrelated users proceed concurrently.
// Holding the ack until a turn finished would serialize everyone, since the
// subscriber delivers the next message only after the previous ack.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	dialogue    IDialogueService
	sender      Sender
	voices      VoiceFetcher
	transcriber speech.Transcriber
	logger      logger.ILogger

	mu        sync.Mutex
	mailboxes map[string]chan dto.InboundUpdate
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	dialogue IDialogueService,
	sender Sender,
	voices VoiceFetcher,
	transcriber speech.Transcriber,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		dialogue:    dialogue,
		sender:      sender,
		voices:      voices,
		transcriber: transcriber,
		logger:      sysLogger,
		mailboxes:   map[string]chan dto.InboundUpdate{},
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var update dto.InboundUpdate
			if err := json.Unmarshal(msg.Payload, &update); err != nil {
				cs.logger.Error("consumer", "failed to unmarshal update", map[string]interface{}{
					"error": err.Error(),
				})
				msg.Ack() // malformed payloads would never succeed on redelivery
				continue
			}

			msg.Ack()
			cs.dispatch(ctx, update)
		}
	}()

	return nil
}

// dispatch enqueues the update on the user's mailbox, starting a worker on
// first contact. The single delivery goroutine calls this, so mailbox order
// is arrival order.
func (cs *consumerService) dispatch(ctx context.Context, update dto.InboundUpdate) {
	cs.mu.Lock()
	box, ok := cs.mailboxes[update.UserID]
	if !ok {
		box = make(chan dto.InboundUpdate, mailboxDepth)
		cs.mailboxes[update.UserID] = box
		go cs.runWorker(ctx, box)
	}
	cs.mu.Unlock()

	select {
	case box <- update:
	case <-ctx.Done():
	}
}

func (cs *consumerService) runWorker(ctx context.Context, box <-chan dto.InboundUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-box:
			cs.handleTurn(ctx, update)
		}
	}
}

func (cs *consumerService) handleTurn(ctx context.Context, update dto.InboundUpdate) {
	text := update.Text
	if update.AttachmentKind == dto.AttachmentKindVoice {
		transcribed, ok := cs.transcribeVoice(ctx, update)
		if !ok {
			return
		}
		text = transcribed
	}

	if err := cs.dialogue.HandleText(ctx, update.UserID, text); err != nil {
		// The dialogue engine has already told the user; nothing to retry
		cs.logger.Error("consumer", "turn ended with error", map[string]interface{}{
			"user_id": update.UserID,
			"error":   err.Error(),
		})
	}
}

// transcribeVoice turns a voice update into text. Any failure, including an
// unintelligible recording, is reported to the user here and ends the turn.
func (cs *consumerService) transcribeVoice(ctx context.Context, update dto.InboundUpdate) (string, bool) {
	audio, err := cs.voices.DownloadFile(ctx, update.AttachmentRef)
	if err != nil {
		cs.logger.Error("consumer", "voice download failed", map[string]interface{}{
			"user_id": update.UserID,
			"error":   err.Error(),
		})
		_ = cs.sender.Send(ctx, update.UserID, constant.MsgVoiceFailure)
		return "", false
	}

	text, err := cs.transcriber.Transcribe(ctx, audio, "voice.ogg")
	if err != nil {
		cs.logger.Error("consumer", "transcription failed", map[string]interface{}{
			"user_id": update.UserID,
			"error":   err.Error(),
		})
		_ = cs.sender.Send(ctx, update.UserID, constant.MsgVoiceFailure)
		return "", false
	}
	if text == "" {
		_ = cs.sender.Send(ctx, update.UserID, constant.MsgVoiceFailure)
		return "", false
	}
	return text, true
}
