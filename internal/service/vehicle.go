package service

import (
	"context"
	"time"

	"xinyuan_tech/assistance-service/internal/biz"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// VehicleService 车辆 HTTP 服务
type VehicleService struct {
	uc *biz.VehicleUsecase
}

// NewVehicleService 创建车辆服务
func NewVehicleService(uc *biz.VehicleUsecase) *VehicleService {
	return &VehicleService{uc: uc}
}

// AddVehicleRequest 添加车辆入参
type AddVehicleRequest struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Year    int    `json:"year"`
	Plate   string `json:"plate"`
	Vin     string `json:"vin"`
	Color   string `json:"color"`
	Mileage int    `json:"mileage"`
}

// VehicleReply 车辆响应
type VehicleReply struct {
	ID        uint64    `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Plate     string    `json:"plate"`
	Vin       string    `json:"vin"`
	Color     string    `json:"color"`
	Mileage   int       `json:"mileage"`
	CreatedAt time.Time `json:"created_at"`
}

// ListVehiclesReply 车辆列表响应
type ListVehiclesReply struct {
	Vehicles []*VehicleReply `json:"vehicles"`
}

func toVehicleReply(v *biz.Vehicle) *VehicleReply {
	return &VehicleReply{
		ID:        v.ID,
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		Plate:     v.Plate,
		Vin:       v.Vin,
		Color:     v.Color,
		Mileage:   v.Mileage,
		CreatedAt: v.CreatedAt,
	}
}

// RegisterHTTPServer 注册车辆路由
func (s *VehicleService) RegisterHTTPServer(srv *khttp.Server) {
	r := srv.Route("/v1")
	r.POST("/vehicles", s.addVehicle)
	r.GET("/vehicles", s.listVehicles)
	r.GET("/vehicles/quota", s.vehicleQuota)
	r.DELETE("/vehicles/{id}", s.deleteVehicle)
}

func (s *VehicleService) addVehicle(ctx khttp.Context) error {
	var in AddVehicleRequest
	if err := ctx.Bind(&in); err != nil {
		return err
	}
	return handle(ctx, "/v1/vehicles/add", &in, func(c context.Context) (interface{}, error) {
		vehicle, err := s.uc.AddVehicle(c, &biz.Vehicle{
			Make:    in.Make,
			Model:   in.Model,
			Year:    in.Year,
			Plate:   in.Plate,
			Vin:     in.Vin,
			Color:   in.Color,
			Mileage: in.Mileage,
		})
		if err != nil {
			return nil, err
		}
		return toVehicleReply(vehicle), nil
	})
}

func (s *VehicleService) listVehicles(ctx khttp.Context) error {
	return handle(ctx, "/v1/vehicles/list", nil, func(c context.Context) (interface{}, error) {
		vehicles, err := s.uc.ListVehicles(c)
		if err != nil {
			return nil, err
		}
		replies := make([]*VehicleReply, len(vehicles))
		for i, v := range vehicles {
			replies[i] = toVehicleReply(v)
		}
		return &ListVehiclesReply{Vehicles: replies}, nil
	})
}

func (s *VehicleService) deleteVehicle(ctx khttp.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	return handle(ctx, "/v1/vehicles/delete", nil, func(c context.Context) (interface{}, error) {
		if err := s.uc.DeleteVehicle(c, id); err != nil {
			return nil, err
		}
		return map[string]interface{}{"success": true}, nil
	})
}

func (s *VehicleService) vehicleQuota(ctx khttp.Context) error {
	return handle(ctx, "/v1/vehicles/quota", nil, func(c context.Context) (interface{}, error) {
		status, err := s.uc.VehicleQuota(c)
		if err != nil {
			return nil, err
		}
		return &QuotaReply{Used: status.Used, Limit: status.Limit}, nil
	})
}
