package controllers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/services"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	formatXLSX = "xlsx"
	formatCSV  = "csv"
	sheetName  = "Rooms"
)

var exportHeader = []string{
	"id", "owner", "name", "address", "type", "area", "distance_to_school", "price",
	"electronic_price", "water_price", "amenities", "images", "updated_at",
}

type ExportController struct {
	rooms *services.RoomService
	log   *zap.Logger
}

func NewExportController(rooms *services.RoomService, log *zap.Logger) *ExportController {
	return &ExportController{rooms: rooms, log: log.Named("export")}
}

// GET /room/export?format=xlsx|csv plus the room list filters.
func (ec *ExportController) ExportRooms(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", formatXLSX))
	if format != formatXLSX && format != formatCSV {
		abort(c, http.StatusBadRequest, "format must be xlsx or csv")
		return
	}
	var filter services.RoomFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	rooms, err := ec.rooms.Export(c.Request.Context(), filter)
	if err != nil {
		fail(c, ec.log, err)
		return
	}

	filename := fmt.Sprintf("rooms_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	switch format {
	case formatCSV:
		c.Header("Content-Type", "text/csv; charset=utf-8")
		err = writeCSV(c.Writer, rooms)
	default:
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = writeXLSX(c.Writer, rooms)
	}
	if err != nil {
		ec.log.Error("export failed", zap.String("format", format), zap.Error(err))
		return
	}
	ec.log.Info("rooms exported", zap.String("format", format), zap.Int("rows", len(rooms)))
}

func exportRow(r models.Room) []string {
	owner := ""
	if r.Owner != nil {
		owner = r.Owner.Username
	}
	var electricity, water string
	var amenities []string
	if a := r.Attribute; a != nil {
		electricity = strconv.FormatFloat(a.ElectricityPrice, 'f', -1, 64)
		water = strconv.FormatFloat(a.WaterPrice, 'f', -1, 64)
		for _, f := range []struct {
			name string
			on   bool
		}{
			{"wifi_internet", a.WifiInternet},
			{"air_conditioner", a.AirConditioner},
			{"water_heater", a.WaterHeater},
			{"refrigerator", a.Refrigerator},
			{"washing_machine", a.WashingMachine},
			{"enclosed_toilet", a.EnclosedToilet},
			{"safed_device", a.SafeDevice},
		} {
			if f.on {
				amenities = append(amenities, f.name)
			}
		}
	}
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		owner,
		r.Name,
		r.Address,
		string(r.Type),
		strconv.FormatFloat(r.Area, 'f', -1, 64),
		strconv.FormatFloat(r.DistanceToSchool, 'f', -1, 64),
		strconv.FormatInt(r.Price, 10),
		electricity,
		water,
		strings.Join(amenities, ","),
		strconv.Itoa(len(r.Images)),
		r.UpdatedAt.Format(time.RFC3339),
	}
}

func writeCSV(w io.Writer, rooms []models.Room) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rooms {
		if err := cw.Write(exportRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, rooms []models.Room) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]string, 0, len(rooms)+1)
	rows = append(rows, exportHeader)
	for _, r := range rooms {
		rows = append(rows, exportRow(r))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	_, err = f.WriteTo(w)
	return err
}
