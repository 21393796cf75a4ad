package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// InteractionUser returns the user behind an interaction in a guild or a DM
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// InteractionUserID returns the interaction user's ID, or "" when unknown
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if u := InteractionUser(i); u != nil {
		return u.ID
	}
	return ""
}

// DisplayName prefers the guild nickname, then the global name, then the username
func DisplayName(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.Nick != "" {
		return i.Member.Nick
	}
	u := InteractionUser(i)
	if u == nil {
		return "Unknown"
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

// CustomID joins a component prefix and an argument
func CustomID(prefix string, arg any) string {
	return fmt.Sprintf("%s:%v", prefix, arg)
}

// SplitCustomID splits "prefix:arg" into its parts; arg is "" when absent
func SplitCustomID(customID string) (prefix, arg string) {
	prefix, arg, _ = strings.Cut(customID, ":")
	return prefix, arg
}

// CustomIDInt parses the numeric argument of a custom ID
func CustomIDInt(customID string) (int, error) {
	_, arg := SplitCustomID(customID)
	return strconv.Atoi(arg)
}
