package in

import (
	"context"

	"flowrpg/internal/modules/progression/dto"
	progressionin "flowrpg/internal/modules/progression/port/in"
)

type CLIHandler struct {
	usecase progressionin.Usecase
}

func NewCLIHandler(usecase progressionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Status(ctx context.Context) (dto.Snapshot, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Block(ctx context.Context, kind string) (dto.Result, error) {
	return h.usecase.ApplyBlock(ctx, kind)
}

func (h CLIHandler) Reward(ctx context.Context, reward string) (dto.Result, error) {
	return h.usecase.ClaimReward(ctx, reward)
}

func (h CLIHandler) NewBoss(ctx context.Context) (dto.Result, error) {
	return h.usecase.SpawnNewBoss(ctx)
}

func (h CLIHandler) CycleDifficulty(ctx context.Context) (dto.Result, error) {
	return h.usecase.CycleDifficulty(ctx)
}

func (h CLIHandler) ForgetTimes(ctx context.Context) (dto.Result, error) {
	return h.usecase.ForgetTimes(ctx)
}

func (h CLIHandler) Reset(ctx context.Context) (dto.Result, error) {
	return h.usecase.ResetAll(ctx)
}

func (h CLIHandler) Chronicle(ctx context.Context, tail int) (dto.ChronicleOutput, error) {
	return h.usecase.Chronicle(ctx, tail)
}

func (h CLIHandler) Export(ctx context.Context, path string) (dto.ExportOutput, error) {
	return h.usecase.ExportChronicle(ctx, dto.ExportInput{Path: path})
}

// TUIHandler is the surface the interactive host drives every second.
type TUIHandler struct {
	usecase progressionin.Usecase
}

func NewTUIHandler(usecase progressionin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Snapshot(ctx context.Context) (dto.Snapshot, error) {
	return h.usecase.Snapshot(ctx)
}

func (h TUIHandler) Toggle(ctx context.Context) (dto.Result, error) {
	return h.usecase.Toggle(ctx)
}

func (h TUIHandler) SwitchMode(ctx context.Context) (dto.Result, error) {
	return h.usecase.SwitchMode(ctx)
}

func (h TUIHandler) Tick(ctx context.Context) (dto.Result, error) {
	return h.usecase.Tick(ctx)
}

// Command runs a palette command such as "block:deep" or "boss:new".
func (h TUIHandler) Command(ctx context.Context, name string) (dto.Result, error) {
	switch name {
	case "block:deep":
		return h.usecase.ApplyBlock(ctx, "deep")
	case "block:mini":
		return h.usecase.ApplyBlock(ctx, "mini")
	case "reward:small":
		return h.usecase.ClaimReward(ctx, "small")
	case "reward:big":
		return h.usecase.ClaimReward(ctx, "big")
	case "boss:new":
		return h.usecase.SpawnNewBoss(ctx)
	case "difficulty:cycle":
		return h.usecase.CycleDifficulty(ctx)
	case "times:forget":
		return h.usecase.ForgetTimes(ctx)
	case "reset":
		return h.usecase.ResetAll(ctx)
	default:
		return dto.Result{}, ErrUnknownCommand{Name: name}
	}
}

func (h TUIHandler) Chronicle(ctx context.Context, tail int) (dto.ChronicleOutput, error) {
	return h.usecase.Chronicle(ctx, tail)
}

type ErrUnknownCommand struct{ Name string }

func (e ErrUnknownCommand) Error() string { return "unknown command: " + e.Name }
