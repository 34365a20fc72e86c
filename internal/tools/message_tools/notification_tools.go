package message_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// RegisterNotificationTools registers the notification tools.
func RegisterNotificationTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendNotificationTool := mcp.NewTool("send_notification",
		mcp.WithDescription("Send a new notification through OneSignal to a segment of the app's audience"),
		common.AppKeyParam(),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Notification title"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Notification message content"),
		),
		mcp.WithString("segment",
			mcp.Description("Target audience segment (default: 'Subscribed Users')"),
		),
		mcp.WithString("target_channel",
			mcp.Description("Channel type: push, email or sms (default: push)"),
			mcp.Enum(onesignal.ChannelPush, onesignal.ChannelEmail, onesignal.ChannelSMS),
		),
		mcp.WithString("data",
			mcp.Description("Additional data to include with the notification, as a JSON object (optional)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	common.AddWriteTool(s, sc, sendNotificationTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSendNotification(ctx, request, sc)
	})

	viewMessagesTool := mcp.NewTool("view_messages",
		mcp.WithDescription("View recent messages sent through OneSignal"),
		common.AppKeyParam(),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of messages to return (default: 20, max: 50)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Result offset for pagination (default: 0)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewMessagesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewMessages(ctx, request, sc)
	})

	viewMessageDetailsTool := mcp.NewTool("view_message_details",
		mcp.WithDescription("Get detailed information about a specific message"),
		common.AppKeyParam(),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The ID of the message to retrieve details for"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewMessageDetailsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewMessageDetails(ctx, request, sc)
	})

	cancelMessageTool := mcp.NewTool("cancel_message",
		mcp.WithDescription("Cancel a scheduled message that hasn't been delivered yet"),
		common.AppKeyParam(),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The ID of the message to cancel"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
	)
	common.AddWriteTool(s, sc, cancelMessageTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCancelMessage(ctx, request, sc)
	})

	return nil
}

func handleSendNotification(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	message, err := common.RequiredString(args, "message")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	data, err := common.JSONObjectArg(args, "data")
	if err != nil {
		return mcp.NewToolResultError("Error: The data parameter must be a JSON object."), nil
	}

	result, err := sc.Client().SendNotification(ctx, common.GetAppKeyFromArgs(args), onesignal.NotificationRequest{
		Title:         title,
		Message:       message,
		Segment:       common.OptionalString(args, "segment", onesignal.DefaultSegment),
		TargetChannel: common.OptionalString(args, "target_channel", onesignal.ChannelPush),
		Data:          data,
	})
	if err != nil {
		return common.ErrorResult("sending notification", err, false), nil
	}

	return mcp.NewToolResultText(formatCreateResult("Notification", result)), nil
}

func handleViewMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	limit, err := common.OptionalInt(args, "limit", onesignal.DefaultPageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	offset, err := common.OptionalInt(args, "offset", 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	list, err := sc.Client().ListNotifications(ctx, common.GetAppKeyFromArgs(args), limit, offset)
	if err != nil {
		return common.ErrorResult("retrieving messages", err, false), nil
	}
	if len(list.Notifications) == 0 {
		return mcp.NewToolResultText("No messages found."), nil
	}

	var sb strings.Builder
	sb.WriteString("Messages:\n\n")
	for _, n := range list.Notifications {
		fmt.Fprintf(&sb, "ID: %s\n", n.ID)
		fmt.Fprintf(&sb, "Title: %s\n", orDefault(n.Heading(), "No Title"))
		fmt.Fprintf(&sb, "Message: %s\n", orDefault(n.Content(), "No Content"))
		fmt.Fprintf(&sb, "Created: %s\n", n.QueuedAt)
		fmt.Fprintf(&sb, "Sent: %s\n", n.SendAfter)
		fmt.Fprintf(&sb, "Status: %s\n", status(n))
		fmt.Fprintf(&sb, "Successful: %d\n", n.Successful)
		fmt.Fprintf(&sb, "Failed: %d\n", n.Failed)
		fmt.Fprintf(&sb, "Remaining: %d\n\n", n.Remaining)
	}
	if list.TotalCount > list.Offset+len(list.Notifications) {
		fmt.Fprintf(&sb, "Showing %d of %d messages. Use offset=%d to see more.\n",
			len(list.Notifications), list.TotalCount, list.Offset+len(list.Notifications))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleViewMessageDetails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, err := common.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	n, err := sc.Client().GetNotification(ctx, common.GetAppKeyFromArgs(args), messageID)
	if err != nil {
		return common.ErrorResult("retrieving message details", err, false), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\n", n.ID)
	fmt.Fprintf(&sb, "App ID: %s\n", n.AppID)
	fmt.Fprintf(&sb, "Title: %s\n", orDefault(n.Heading(), "No Title"))
	fmt.Fprintf(&sb, "Message: %s\n", orDefault(n.Content(), "No Content"))
	fmt.Fprintf(&sb, "URL: %s\n", orDefault(n.URL, "None"))
	fmt.Fprintf(&sb, "Created: %s\n", n.QueuedAt)
	fmt.Fprintf(&sb, "Sent: %s\n", n.SendAfter)
	fmt.Fprintf(&sb, "Completed: %s\n", n.CompletedAt)
	fmt.Fprintf(&sb, "Canceled: %t\n", n.Canceled)
	fmt.Fprintf(&sb, "Successful: %d\n", n.Successful)
	fmt.Fprintf(&sb, "Failed: %d\n", n.Failed)
	fmt.Fprintf(&sb, "Errored: %d\n", n.Errored)
	fmt.Fprintf(&sb, "Converted: %d\n", n.Converted)
	fmt.Fprintf(&sb, "Remaining: %d\n", n.Remaining)
	fmt.Fprintf(&sb, "Platform Delivery Stats: %s\n", rawOrNone(n.PlatformDeliveryStats))

	return mcp.NewToolResultText(sb.String()), nil
}

func handleCancelMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, err := common.RequiredString(args, "message_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	if _, err := sc.Client().CancelNotification(ctx, common.GetAppKeyFromArgs(args), messageID); err != nil {
		return common.ErrorResult("canceling message", err, false), nil
	}

	return mcp.NewToolResultText("Message canceled successfully."), nil
}

// status summarizes delivery state the way the dashboard does.
func status(n onesignal.Notification) string {
	switch {
	case n.Canceled:
		return "Canceled"
	case !n.CompletedAt.IsZero():
		return "Completed " + n.CompletedAt.String()
	default:
		return "Pending"
	}
}

func formatCreateResult(kind string, r *onesignal.CreateNotificationResult) string {
	var sb strings.Builder
	if r.ID == "" {
		fmt.Fprintf(&sb, "%s was not created.", kind)
	} else {
		fmt.Fprintf(&sb, "%s sent successfully with ID: %s", kind, r.ID)
	}
	if r.Recipients > 0 {
		fmt.Fprintf(&sb, "\nRecipients: %d", r.Recipients)
	}
	if r.HasErrors() {
		fmt.Fprintf(&sb, "\nWarnings from OneSignal: %s", string(r.Errors))
	}
	return sb.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func rawOrNone(raw []byte) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "None"
	}
	return string(raw)
}
