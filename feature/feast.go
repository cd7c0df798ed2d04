package feature

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/gatherkit/gatherkit/core"
)

// FeastService 是基于 Feast Online Store 的特征服务实现。
//
// 用途：从特征平台补充离线计算好的数值信号（近 7 日活跃、点击率等），
// 注入 Vector.Numeric 供自定义 Node 与 CEL 规则使用。
//
// 特征命名约定：FeatureRefs 使用 Feast 的 "feature_table:feature" 形式，
// 注入 Numeric 时保留完整引用名作为 key。
type FeastService struct {
	client  *feastsdk.GrpcClient
	project string

	// UserEntity / ItemEntity 是 Feast 中的实体名（如 "user_id"、"item_id"）
	UserEntity string
	ItemEntity string

	// UserFeatureRefs / ItemFeatureRefs 是要拉取的特征引用列表
	UserFeatureRefs []string
	ItemFeatureRefs []string
}

// NewFeastService 创建 Feast 特征服务。
func NewFeastService(host string, port int, project string) (*FeastService, error) {
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast grpc client: %w", err)
	}
	return &FeastService{
		client:     client,
		project:    project,
		UserEntity: "user_id",
		ItemEntity: "item_id",
	}, nil
}

func (s *FeastService) Name() string { return "feast" }

func (s *FeastService) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	if userID == "" || len(s.UserFeatureRefs) == 0 {
		return map[string]float64{}, nil
	}
	rows, err := s.getOnline(ctx, s.UserFeatureRefs, s.UserEntity, []string{userID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}
	return rows[0], nil
}

func (s *FeastService) BatchGetItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(itemIDs))
	if len(itemIDs) == 0 || len(s.ItemFeatureRefs) == 0 {
		return out, nil
	}
	rows, err := s.getOnline(ctx, s.ItemFeatureRefs, s.ItemEntity, itemIDs)
	if err != nil {
		return nil, err
	}
	for i, id := range itemIDs {
		if i < len(rows) {
			out[id] = rows[i]
		}
	}
	return out, nil
}

func (s *FeastService) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// getOnline 调用 Feast Online Store，把每个实体行的特征转成 map[string]float64。
func (s *FeastService) getOnline(ctx context.Context, refs []string, entity string, ids []string) ([]map[string]float64, error) {
	entities := make([]feastsdk.Row, len(ids))
	for i, id := range ids {
		entities[i] = feastsdk.Row{entity: feastsdk.StrVal(id)}
	}

	resp, err := s.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: refs,
		Entities: entities,
		Project:  s.project,
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeUnavailable,
			fmt.Sprintf("feature: feast online features failed: %v", err))
	}

	rows := resp.Rows()
	out := make([]map[string]float64, len(rows))
	for i, row := range rows {
		features := make(map[string]float64, len(refs))
		for _, ref := range refs {
			if val, ok := row[ref]; ok {
				if f, ok := valueToFloat64(val); ok {
					features[ref] = f
				}
			}
		}
		out[i] = features
	}
	return out, nil
}

// valueToFloat64 把 Feast 的 protobuf Value 转为 float64，非数值类型被跳过。
func valueToFloat64(v *feasttypes.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.Val.(type) {
	case *feasttypes.Value_DoubleVal:
		return val.DoubleVal, true
	case *feasttypes.Value_FloatVal:
		return float64(val.FloatVal), true
	case *feasttypes.Value_Int64Val:
		return float64(val.Int64Val), true
	case *feasttypes.Value_Int32Val:
		return float64(val.Int32Val), true
	case *feasttypes.Value_BoolVal:
		if val.BoolVal {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// 确保 FeastService 实现了 Service 接口
var _ Service = (*FeastService)(nil)
