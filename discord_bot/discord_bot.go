package discord_bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"image_bot/discord_bot/handlers"
	"image_bot/queue"
)

const devPrefix = "dev_"

type Bot interface {
	// Start blocks until ctx is done, then tears the bot down.
	Start(ctx context.Context) error
}

type botImpl struct {
	developmentMode    bool
	botSession         *discordgo.Session
	guildID            string
	registeredCommands []*discordgo.ApplicationCommand
	removeCommands     bool

	handlers   queue.CommandHandlers
	components queue.Components
}

type Config struct {
	DevelopmentMode bool
	BotToken        string
	// GuildID registers commands to one guild. Empty registers them globally.
	GuildID        string
	Modules        []queue.Module
	RemoveCommands bool
}

func New(cfg *Config) (Bot, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("missing bot token")
	}
	if len(cfg.Modules) == 0 {
		return nil, errors.New("missing modules")
	}

	botSession, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	bot := &botImpl{
		developmentMode: cfg.DevelopmentMode,
		botSession:      botSession,
		guildID:         cfg.GuildID,
		removeCommands:  cfg.RemoveCommands,
		handlers:        make(queue.CommandHandlers),
		components:      make(queue.Components),
	}

	for key, handler := range handlers.ComponentHandlers {
		bot.components[key] = handler
	}
	for _, module := range cfg.Modules {
		if err := bot.route(module); err != nil {
			return nil, err
		}
	}

	botSession.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	botSession.AddHandler(bot.interactionCreate)

	if err := botSession.Open(); err != nil {
		return nil, err
	}

	for _, module := range cfg.Modules {
		for _, command := range module.Commands() {
			if err := bot.addCommand(command); err != nil {
				_ = botSession.Close()
				return nil, err
			}
		}
	}

	return bot, nil
}

// route merges the handlers of module, refusing duplicate commands or components.
func (b *botImpl) route(module queue.Module) error {
	for interactionType, commands := range module.Handlers() {
		if b.handlers[interactionType] == nil {
			b.handlers[interactionType] = make(map[string]queue.Handler)
		}
		for name, handler := range commands {
			if _, ok := b.handlers[interactionType][name]; ok {
				return fmt.Errorf("duplicate handler for %v %q", interactionType, name)
			}
			b.handlers[interactionType][name] = handler
		}
	}
	for key, handler := range module.Components() {
		if _, ok := b.components[key]; ok {
			return fmt.Errorf("duplicate component %q", key)
		}
		b.components[key] = handler
	}
	return nil
}

func (b *botImpl) commandName(name string) string {
	if b.developmentMode {
		return devPrefix + name
	}
	return name
}

func (b *botImpl) addCommand(command *discordgo.ApplicationCommand) error {
	registered := *command
	registered.Name = b.commandName(command.Name)

	log.Printf("Adding command '%s'...", registered.Name)
	cmd, err := b.botSession.ApplicationCommandCreate(b.botSession.State.User.ID, b.guildID, &registered)
	if err != nil {
		return fmt.Errorf("cannot create '%s' command: %w", registered.Name, err)
	}
	b.registeredCommands = append(b.registeredCommands, cmd)
	log.Printf("Successfully added command '%s'", cmd.Name)
	return nil
}

func (b *botImpl) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	handler, name := b.lookup(i)
	if handler == nil {
		log.Printf("Unknown %v interaction '%v'", i.Type, name)
		return
	}

	if err := handler(s, i); err != nil {
		log.Error().Err(err).Str("interaction", name).Str("type", i.Type.String()).Msg("Error handling interaction")
	}
}

func (b *botImpl) lookup(i *discordgo.InteractionCreate) (queue.Handler, string) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
		name := i.ApplicationCommandData().Name
		if b.developmentMode {
			name = strings.TrimPrefix(name, devPrefix)
		}
		return b.handlers[i.Type][name], name
	case discordgo.InteractionMessageComponent:
		key := queue.ComponentKey(i.MessageComponentData().CustomID)
		return b.components[key], key
	default:
		return nil, i.Type.String()
	}
}

func (b *botImpl) Start(ctx context.Context) error {
	<-ctx.Done()
	return b.teardown()
}

func (b *botImpl) teardown() error {
	// Delete all commands added by the bot
	if b.removeCommands {
		log.Printf("Removing all commands added by bot...")

		for _, v := range b.registeredCommands {
			log.Printf("Removing command '%v'...", v.Name)

			err := b.botSession.ApplicationCommandDelete(b.botSession.State.User.ID, b.guildID, v.ID)
			if err != nil {
				log.Error().Err(err).Str("command", v.Name).Msg("Cannot delete command")
			}
		}
	}

	return b.botSession.Close()
}
