package utils

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/bwmarrin/discordgo"
)

func GetUsername(entities ...any) string {
	if user := GetUser(entities...); user != nil {
		return user.Username
	}
	return "unknown"
}

func GetUser(entities ...any) *discordgo.User {
	for _, entity := range entities {
		v := reflect.ValueOf(entity)
		if v.Kind() == reflect.Pointer && v.IsNil() {
			continue
		}
		switch e := entity.(type) {
		case *discordgo.User:
			return e
		case *discordgo.Member:
			return GetUser(e.User)
		case *discordgo.Message:
			return GetUser(e.Author, e.Member)
		case *discordgo.Interaction:
			return GetUser(e.Member, e.User)
		case *discordgo.InteractionCreate:
			return GetUser(e.Interaction)
		case *discordgo.MessageInteraction:
			return GetUser(e.User, e.Member)
		default:
			continue
		}
	}
	return nil
}

// IsDM reports whether the interaction happened outside a guild.
func IsDM(i *discordgo.Interaction) bool {
	return i.GuildID == ""
}

func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// GetChannel reads the channel from state, fetching and caching it on a miss.
func GetChannel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	if s == nil {
		return nil, errors.New("*discordgo.Session is nil")
	}
	channel, err := s.State.Channel(channelID)
	if err != nil {
		if !errors.Is(err, discordgo.ErrStateNotFound) {
			return nil, err
		}
		channel, err = s.Channel(channelID)
		if err != nil {
			return nil, err
		}
		if err := s.State.ChannelAdd(channel); err != nil {
			return nil, err
		}
	}
	return channel, nil
}

// IsNSFW reports whether the interaction's channel allows NSFW content.
// Direct messages never do.
func IsNSFW(s *discordgo.Session, i *discordgo.Interaction) bool {
	if IsDM(i) {
		return false
	}
	channel, err := GetChannel(s, i.ChannelID)
	if err != nil {
		return false
	}
	return channel.NSFW
}

// IsAdmin reports whether the member invoking the interaction may manage the guild.
func IsAdmin(i *discordgo.Interaction) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageServer) != 0
}
