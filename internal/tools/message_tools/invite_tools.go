package message_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/batch"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// bulkInviteConcurrency bounds the invitations sent in parallel.
const bulkInviteConcurrency = 4

// RegisterInviteTools registers the invitation email tools.
func RegisterInviteTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sendInviteTool := mcp.NewTool("send_invite_email",
		mcp.WithDescription("Send an invitation email through the OneSignal email channel"),
		common.AppKeyParam(),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Recipient email address"),
		),
		mcp.WithString("first_name",
			mcp.Description("Recipient first name used in the greeting (optional)"),
		),
		mcp.WithString("invite_url",
			mcp.Required(),
			mcp.Description("Absolute URL the recipient follows to accept the invitation"),
		),
		mcp.WithString("inviter_name",
			mcp.Required(),
			mcp.Description("Name of the person sending the invitation"),
		),
		mcp.WithString("app_name",
			mcp.Required(),
			mcp.Description("Name of the product the recipient is invited to"),
		),
		mcp.WithNumber("expiry_days",
			mcp.Description(fmt.Sprintf("Days until the invitation expires (default: %d)", onesignal.DefaultInviteExpiryDays)),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	common.AddWriteTool(s, sc, sendInviteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSendInvite(ctx, request, sc)
	})

	bulkInvitesTool := mcp.NewTool("send_bulk_invites",
		mcp.WithDescription("Send invitation emails to many recipients. Returns one result per recipient; a failed invite does not stop the others."),
		common.AppKeyParam(),
		mcp.WithString("invites",
			mcp.Required(),
			mcp.Description(`JSON array of invites, e.g. [{"email": "a@example.com", "first_name": "Ann", "invite_url": "https://...", "inviter_name": "Bob"}]. Each invite may override app_name and expiry_days.`),
		),
		mcp.WithString("app_name",
			mcp.Description("Product name used for invites that do not set their own"),
		),
		mcp.WithString("inviter_name",
			mcp.Description("Inviter name used for invites that do not set their own"),
		),
		mcp.WithNumber("expiry_days",
			mcp.Description(fmt.Sprintf("Expiry used for invites that do not set their own (default: %d)", onesignal.DefaultInviteExpiryDays)),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)
	common.AddWriteTool(s, sc, bulkInvitesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSendBulkInvites(ctx, request, sc)
	})

	return nil
}

func handleSendInvite(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	expiry, err := common.OptionalInt(args, "expiry_days", onesignal.DefaultInviteExpiryDays)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	invite := onesignal.Invite{
		Email:       strings.TrimSpace(common.OptionalString(args, "email", "")),
		FirstName:   common.OptionalString(args, "first_name", ""),
		InviteURL:   strings.TrimSpace(common.OptionalString(args, "invite_url", "")),
		InviterName: common.OptionalString(args, "inviter_name", ""),
		AppName:     common.OptionalString(args, "app_name", ""),
		ExpiryDays:  expiry,
	}

	result, err := sc.Client().SendInvite(ctx, common.GetAppKeyFromArgs(args), invite)
	if err != nil {
		return common.ErrorResult("sending invitation", err, false), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Invitation sent to %s.\n%s", invite.Email, formatCreateResult("Email", result))), nil
}

func handleSendBulkInvites(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	items, err := batch.ParseObjectArray(args["invites"], "invites")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	expiry, err := common.OptionalInt(args, "expiry_days", onesignal.DefaultInviteExpiryDays)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	defaults := onesignal.Invite{
		AppName:     common.OptionalString(args, "app_name", ""),
		InviterName: common.OptionalString(args, "inviter_name", ""),
		ExpiryDays:  expiry,
	}

	invites := make([]inviteItem, 0, len(items))
	for i, item := range items {
		invites = append(invites, decodeInvite(i, item, defaults))
	}

	appKey := common.GetAppKeyFromArgs(args)
	results := batch.Process(ctx, invites, bulkInviteConcurrency,
		func(it inviteItem) string { return it.id },
		func(ctx context.Context, it inviteItem) (string, error) {
			if it.err != nil {
				return "", it.err
			}
			res, err := sc.Client().SendInvite(ctx, appKey, it.invite)
			if err != nil {
				return "", err
			}
			return "sent with notification ID " + res.ID, nil
		},
	)

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// inviteItem is one entry of a bulk request. Entries that could not be
// decoded carry err and are reported without being sent.
type inviteItem struct {
	id     string
	invite onesignal.Invite
	err    error
}

func decodeInvite(index int, item map[string]any, defaults onesignal.Invite) inviteItem {
	it := inviteItem{id: fmt.Sprintf("invites[%d]", index), invite: defaults}

	raw, err := json.Marshal(item)
	if err == nil {
		err = json.Unmarshal(raw, &it.invite)
	}
	if err != nil {
		it.err = fmt.Errorf("invalid invite: %w", err)
		return it
	}

	if it.invite.Email != "" {
		it.id = it.invite.Email
	}
	if it.invite.ExpiryDays == 0 {
		it.invite.ExpiryDays = defaults.ExpiryDays
	}
	return it
}
