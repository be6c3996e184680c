package novelai

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"image_bot/discord_bot/handlers"
	"image_bot/queue"
	"image_bot/utils"
)

const (
	invalidImageContent = "Attachment must be a valid image."
	resizeFailedContent = ":warning: Failed to resize image. Please try sending a smaller image."
)

func (q *NAIQueue) handlers() queue.CommandHandlers {
	return queue.CommandHandlers{
		discordgo.InteractionApplicationCommand: {
			NovelAICommand:  q.processNovelAICommand,
			Img2ImgCommand:  q.processImg2ImgCommand,
			DefaultsCommand: q.processDefaultsCommand,
			SettingsCommand: q.processSettingsCommand,
		},
		discordgo.InteractionApplicationCommandAutocomplete: {
			NovelAICommand:  q.autocompleteResolution,
			DefaultsCommand: q.autocompleteResolution,
		},
	}
}

func (q *NAIQueue) processNovelAICommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	optionMap := utils.GetOpts(i.ApplicationCommandData())
	raw := rawRequest(optionMap)

	job, err := q.gate.Validate(q.ctx, raw, q.submitter(i.Interaction), q.where(s, i.Interaction))
	if err != nil {
		return reject(s, i.Interaction, err)
	}

	if err := handlers.MessageResponse(s, i.Interaction, q.LoadingMessage()); err != nil {
		return err
	}
	return q.enqueue(s, i.Interaction, job)
}

func (q *NAIQueue) processImg2ImgCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	optionMap := utils.GetOpts(i.ApplicationCommandData())

	attachment := utils.GetAttachment(i, optionMap, imageOption)
	if !utils.IsImageAttachment(attachment) {
		return handlers.EphemeralContent(s, i.Interaction, invalidImageContent)
	}

	width, height := utils.Img2ImgResolution(attachment.Width, attachment.Height)
	resolution := fmt.Sprintf("%d,%d", width, height)

	raw := rawRequest(optionMap)
	raw.Resolution = &resolution

	job, err := q.gate.Validate(q.ctx, raw, q.submitter(i.Interaction), q.where(s, i.Interaction))
	if err != nil {
		return reject(s, i.Interaction, err)
	}

	if err := handlers.ThinkResponse(s, i); err != nil {
		return err
	}

	data, err := utils.GetDataFromUrl(q.ctx, attachment.URL)
	if err != nil {
		return handlers.ErrorEdit(s, i.Interaction, fmt.Errorf("error downloading attachment: %w", err))
	}

	data, err = utils.ShrinkToPNG(data, utils.MaxUploadedImageSize)
	if err != nil {
		log.Error().Err(err).Str("attachment", attachment.URL).Msg("Error resizing image")
		_, err = handlers.EditInteractionResponse(s, i.Interaction, resizeFailedContent)
		return err
	}

	job.UseImage(utils.EncodeBase64(data), optionMap[strengthOption].FloatValue(), optionMap[noiseOption].FloatValue())

	if _, err := handlers.EditInteractionResponse(s, i.Interaction, q.LoadingMessage()); err != nil {
		return err
	}
	return q.enqueue(s, i.Interaction, job)
}

// enqueue adds a job whose interaction already shows the loading message.
func (q *NAIQueue) enqueue(s *discordgo.Session, i *discordgo.Interaction, job *Job) error {
	job.InteractionID = i.ID
	job.Responder = q.responder(s, i)

	position, err := q.Add(job)
	switch {
	case errors.Is(err, ErrAlreadyGenerating):
		_, err = handlers.EditInteractionResponse(s, i, busyContent)
		return err
	case err != nil:
		return handlers.ErrorEdit(s, i, fmt.Errorf("error adding generation to queue: %w", err))
	}

	log.Printf("Queued %s for %s at position %d", job.Type, job.Submitter.ID, position)
	return nil
}

// reject answers a request the gate refused.
func reject(s *discordgo.Session, i *discordgo.Interaction, err error) error {
	var rejection *Rejection
	if !errors.As(err, &rejection) {
		return handlers.ErrorEphemeral(s, i, err)
	}
	if rejection.Ephemeral() || i.Type == discordgo.InteractionMessageComponent {
		return handlers.EphemeralContent(s, i, rejection.Message)
	}
	return handlers.MessageResponse(s, i, rejection.Message)
}

func (q *NAIQueue) submitter(i *discordgo.Interaction) Submitter {
	var id string
	if user := utils.GetUser(i); user != nil {
		id = user.ID
	}
	return Submitter{ID: id, Owner: q.isOwner(id)}
}

func (q *NAIQueue) isOwner(userID string) bool {
	return q.ownerID != "" && userID == q.ownerID
}

func (q *NAIQueue) where(s *discordgo.Session, i *discordgo.Interaction) Where {
	return Where{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		NSFW:      utils.IsNSFW(s, i),
	}
}

func rawRequest(optionMap map[string]*discordgo.ApplicationCommandInteractionDataOption) RawRequest {
	raw := RawRequest{
		Seed:            utils.IntOpt(optionMap, seedOption),
		Resolution:      utils.StringOpt(optionMap, resolutionOption),
		Guidance:        utils.FloatOpt(optionMap, guidanceOption),
		GuidanceRescale: utils.FloatOpt(optionMap, guidanceRescaleOption),
		Sampler:         utils.StringOpt(optionMap, samplerOption),
		SamplerVersion:  utils.StringOpt(optionMap, samplerVersionOption),
		NoiseSchedule:   utils.StringOpt(optionMap, scheduleOption),
		Decrisper:       utils.BoolOpt(optionMap, decrisperOption),
	}
	if prompt := utils.StringOpt(optionMap, promptOption); prompt != nil {
		raw.Prompt = *prompt
	}
	if negative := utils.StringOpt(optionMap, negativeOption); negative != nil {
		raw.NegativePrompt = *negative
	}
	return raw
}
