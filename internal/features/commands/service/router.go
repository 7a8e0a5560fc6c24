package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "instantwin-bot/internal/common/errors"
	"instantwin-bot/internal/common/logger"
	auditservice "instantwin-bot/internal/features/audit/service"
	"instantwin-bot/internal/features/commands/models"
	giveawayservice "instantwin-bot/internal/features/giveaway/service"
	inventoryservice "instantwin-bot/internal/features/inventory/service"
	permissionservice "instantwin-bot/internal/features/permissions/service"
)

// Router dispatches management commands to the services behind them. Every
// command is gated on manager rights first; command-level errors come back
// as AppErrors for the presentation layer to render as transient replies.
type Router struct {
	giveaways   *giveawayservice.GiveawayService
	inventory   *inventoryservice.InventoryService
	permissions *permissionservice.PermissionService
	audit       *auditservice.AuditService
}

func NewRouter(
	giveaways *giveawayservice.GiveawayService,
	inventory *inventoryservice.InventoryService,
	permissions *permissionservice.PermissionService,
	audit *auditservice.AuditService,
) *Router {
	return &Router{
		giveaways:   giveaways,
		inventory:   inventory,
		permissions: permissions,
		audit:       audit,
	}
}

// Dispatch executes one command invocation on behalf of caller.
func (r *Router) Dispatch(ctx context.Context, name string, args models.Args, caller models.Caller) (*models.Result, error) {
	if !r.permissions.IsAuthorized(ctx, caller.IsSuperAdmin, caller.Roles) {
		logger.Warn().Str("caller_id", caller.ID).Str("command", name).Msg("Unauthorized command attempt")
		return nil, apperrors.NewUnauthorizedError("manager role required")
	}

	switch name {
	case models.CmdHostGiveaway:
		return r.hostGiveaway(ctx, args)
	case models.CmdSetPrize:
		return r.setPrize(ctx, args)
	case models.CmdViewPrizes:
		return r.viewPrizes(ctx)
	case models.CmdRemovePrize:
		return r.removePrize(ctx, args)
	case models.CmdClearPrizes:
		return r.clearPrizes(ctx)
	case models.CmdAddRole:
		return r.addRole(ctx, args)
	case models.CmdRemoveRole:
		return r.removeRole(ctx, args)
	case models.CmdViewRoles:
		return r.viewRoles(ctx)
	case models.CmdAddLogChannel:
		return r.addLogChannel(ctx, args)
	case models.CmdEnd:
		return r.end(ctx, args, caller)
	default:
		return nil, apperrors.NewNotFoundError("command", name)
	}
}

func (r *Router) hostGiveaway(ctx context.Context, args models.Args) (*models.Result, error) {
	title, ok := args.String("title")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("title", "required")
	}
	duration, ok := args.Int("duration")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("duration", "must be an integer number of minutes")
	}
	channelID, ok := args.String("channel_id")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("channel_id", "required")
	}

	sess, err := r.giveaways.Start(ctx, channelID, title, duration)
	if err != nil {
		return nil, err
	}

	return &models.Result{
		Text:      fmt.Sprintf("Giveaway started! (message %s)", sess.ID),
		Ephemeral: true,
	}, nil
}

func (r *Router) setPrize(ctx context.Context, args models.Args) (*models.Result, error) {
	prize, ok := args.String("prize")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("prize", "required")
	}
	quantity, ok := args.Int("quantity")
	if !ok {
		quantity = 1
	}

	total, err := r.inventory.Add(ctx, prize, quantity)
	if err != nil {
		return nil, err
	}

	r.audit.Log(ctx, fmt.Sprintf("🎁 Added %dx %s", quantity, prize))
	return &models.Result{
		Text:      fmt.Sprintf("Added %d of %s prize(s)! Pool now holds %d.", quantity, prize, total),
		Ephemeral: true,
	}, nil
}

func (r *Router) viewPrizes(ctx context.Context) (*models.Result, error) {
	prizes := r.inventory.List(ctx)
	if len(prizes) == 0 {
		return &models.Result{Text: "No prizes configured!", Ephemeral: true}, nil
	}

	var b strings.Builder
	b.WriteString("**Current Prizes:**\n")
	for i, p := range prizes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return &models.Result{Text: strings.TrimRight(b.String(), "\n"), Ephemeral: true}, nil
}

func (r *Router) removePrize(ctx context.Context, args models.Args) (*models.Result, error) {
	index, ok := args.Int("index")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("index", "must be an integer")
	}

	removed, err := r.inventory.Remove(ctx, index)
	if err != nil {
		return nil, err
	}

	r.audit.Log(ctx, fmt.Sprintf("🗑 Removed prize: %s", removed))
	return &models.Result{Text: fmt.Sprintf("Removed prize: %s", removed), Ephemeral: true}, nil
}

func (r *Router) clearPrizes(ctx context.Context) (*models.Result, error) {
	if err := r.inventory.Clear(ctx); err != nil {
		return nil, err
	}

	r.audit.Log(ctx, "🧹 Cleared all prizes")
	return &models.Result{Text: "All prizes cleared!", Ephemeral: true}, nil
}

func (r *Router) addRole(ctx context.Context, args models.Args) (*models.Result, error) {
	roleID, ok := args.String("role_id")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("role_id", "required")
	}

	if err := r.permissions.AddRole(ctx, roleID); err != nil {
		return nil, err
	}

	r.audit.Log(ctx, fmt.Sprintf("🛡 Added manager role: %s", roleID))
	return &models.Result{Text: fmt.Sprintf("Added role %s as manager!", roleID), Ephemeral: true}, nil
}

func (r *Router) removeRole(ctx context.Context, args models.Args) (*models.Result, error) {
	roleID, ok := args.String("role_id")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("role_id", "required")
	}

	if err := r.permissions.RemoveRole(ctx, roleID); err != nil {
		return nil, err
	}

	r.audit.Log(ctx, fmt.Sprintf("➖ Removed manager role: %s", roleID))
	return &models.Result{Text: fmt.Sprintf("Removed role %s from managers!", roleID), Ephemeral: true}, nil
}

func (r *Router) viewRoles(ctx context.Context) (*models.Result, error) {
	roles := r.permissions.ListRoles(ctx)
	if len(roles) == 0 {
		return &models.Result{Text: "**Manager Roles:**\nNone", Ephemeral: true}, nil
	}
	return &models.Result{
		Text:      "**Manager Roles:**\n" + strings.Join(roles, "\n"),
		Ephemeral: true,
	}, nil
}

func (r *Router) addLogChannel(ctx context.Context, args models.Args) (*models.Result, error) {
	channelID, ok := args.String("channel_id")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("channel_id", "required")
	}

	if err := r.audit.SetLogChannel(ctx, channelID); err != nil {
		return nil, err
	}

	r.audit.Log(ctx, fmt.Sprintf("📜 Log channel set to %s", channelID))
	return &models.Result{Text: fmt.Sprintf("Log channel set to %s!", channelID), Ephemeral: true}, nil
}

func (r *Router) end(ctx context.Context, args models.Args, caller models.Caller) (*models.Result, error) {
	messageID, ok := args.String("message_id")
	if !ok {
		return nil, apperrors.NewInvalidArgumentError("message_id", "required")
	}

	if err := r.giveaways.End(ctx, messageID); err != nil {
		if errors.Is(err, giveawayservice.ErrSessionNotFound) {
			return nil, apperrors.NewNotFoundError("giveaway", messageID)
		}
		return nil, err
	}

	r.audit.Log(ctx, fmt.Sprintf("🛑 Giveaway %s ended manually by %s", messageID, caller.ID))
	return &models.Result{Text: "✅ Giveaway ended successfully!", Ephemeral: true}, nil
}
