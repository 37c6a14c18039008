package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/alfredjeanlab/ticketbot/internal/model"
)

// Component custom IDs.
const (
	currencySelectPrefix = "crypto_select"
	closeButtonID        = "close_ticket"
)

// Embed colours.
const (
	colorPurple = 0x953CD3
	colorGreen  = 0x00B050
	colorRed    = 0xFF3C3C
	colorYellow = 0xFFCC00
	colorError  = 0xFF0000
)

// Titles and texts the collector later recognises when decluttering a channel.
const (
	addUserTitle       = "👥 Add User to Ticket"
	invalidUserTitle   = "Invalid User ID"
	selfWarningText    = "You cannot trade with yourself."
	restrictedWarnText = "You cannot trade with this user."
)

func mention(userID string) string {
	return "<@" + userID + ">"
}

func currencySelectRow(customID string) discordgo.ActionsRow {
	options := make([]discordgo.SelectMenuOption, 0, len(model.Currencies))
	for _, c := range model.Currencies {
		options = append(options, discordgo.SelectMenuOption{Label: c.Label(), Value: c.String()})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    customID,
				Placeholder: "Choose one...",
				Options:     options,
			},
		},
	}
}

func currencyPromptMessage(customID string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Select a Cryptocurrency",
			Description: "Choose which crypto this ticket is for.",
			Color:       colorPurple,
		}},
		Components: []discordgo.MessageComponent{currencySelectRow(customID)},
	}
}

func welcomeMessage(requesterID string, cur model.Currency, token, thumbnailURL string) *discordgo.MessageSend {
	welcome := &discordgo.MessageEmbed{
		Title: "Automated Middleman System",
		Description: "Welcome to our automated cryptocurrency middleman system! Your cryptocurrency will be " +
			"securely held in escrow throughout the duration of this transaction.\n\n" +
			fmt.Sprintf("> **Escrow Currency:**  `%s`\n", cur.Label()) +
			fmt.Sprintf("> **Secure Token:**  `%s`", token),
		Color: colorGreen,
	}
	if thumbnailURL != "" {
		welcome.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailURL}
	}
	security := &discordgo.MessageEmbed{
		Title:       "Security Notification",
		Description: "Keep all transaction-related communications within this ticket. Retain the secure token until your funds are in escrow.",
		Color:       colorRed,
	}
	return &discordgo.MessageSend{
		Content: mention(requesterID),
		Embeds:  []*discordgo.MessageEmbed{welcome, security},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Close 🔒",
						Style:    discordgo.DangerButton,
						CustomID: closeButtonID,
					},
				},
			},
		},
	}
}

func ticketCreatedEmbed(cur model.Currency, channelID string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Ticket Created",
		Description: fmt.Sprintf("Your %s ticket has been created at <#%s>", cur.Label(), channelID),
		Color:       colorPurple,
	}
}

func addUserPromptMessage() *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       addUserTitle,
			Description: "Please provide the **Discord User ID** of the person you want to add.",
			Color:       colorPurple,
		}},
	}
}

func warningMessage(w model.Warning) *discordgo.MessageSend {
	var embed *discordgo.MessageEmbed
	switch w {
	case model.WarnSelf:
		embed = &discordgo.MessageEmbed{Description: selfWarningText, Color: colorYellow}
	case model.WarnRestricted:
		embed = &discordgo.MessageEmbed{Description: restrictedWarnText, Color: colorError}
	default:
		embed = &discordgo.MessageEmbed{
			Title:       invalidUserTitle,
			Description: "That wasn't a valid user. Please try again.",
			Color:       colorError,
		}
	}
	return &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
}

func userAddedMessage(memberID string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content: mention(memberID),
		Embeds: []*discordgo.MessageEmbed{{
			Description: fmt.Sprintf("Added %s to this ticket.", mention(memberID)),
			Color:       colorGreen,
		}},
	}
}

func closingEmbed(delaySecs int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Ticket Closed 🔒",
		Description: fmt.Sprintf("This ticket will be deleted in %d seconds.", delaySecs),
		Color:       colorRed,
	}
}

// isStaleNotice reports whether m is a prompt or warning that is removed once
// a counterparty has been added.
func isStaleNotice(m *discordgo.Message) bool {
	if m == nil || len(m.Embeds) == 0 || m.Embeds[0] == nil {
		return false
	}
	e := m.Embeds[0]
	switch {
	case e.Title == invalidUserTitle, e.Title == addUserTitle:
		return true
	case e.Description == selfWarningText, e.Description == restrictedWarnText:
		return true
	}
	return false
}

func ephemeralResponse(embed *discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	}
}

func errorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "Something went wrong", Description: description, Color: colorError}
}
