package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"license-activation-server/internal/model"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetSyncService 把许可证行镜像到 Google Sheet,方便运营侧查看。
// 只做单向镜像:Sheet 永远不会写回数据库,绑定不变量不经过它。
type SheetSyncService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

func NewSheetSyncService(enableSync bool, credentialPath, spreadsheetID, sheetName string) (*SheetSyncService, error) {
	if !enableSync {
		return nil, nil
	}

	ctx := context.Background()

	// 读取凭证文件
	b, err := os.ReadFile(credentialPath)
	if err != nil {
		return nil, err
	}

	// 使用服务账号授权
	creds, err := google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("无法加载凭证: %v", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}

	return &SheetSyncService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func (s *SheetSyncService) rowFor(license *model.License) []interface{} {
	machineID := ""
	if license.MachineID != nil {
		machineID = *license.MachineID
	}
	lastUsed := ""
	if license.LastUsed != nil {
		lastUsed = license.LastUsed.Format(time.RFC3339)
	}
	return []interface{}{
		license.Key,
		license.ID,
		license.ExpirationDate.Format(time.RFC3339),
		machineID,
		license.IsActive,
		license.UsageCount,
		lastUsed,
		license.CreatedAt.Format(time.RFC3339),
	}
}

// SyncLicense 按 Key 查找行,存在则更新,否则追加
func (s *SheetSyncService) SyncLicense(license *model.License) error {
	if s == nil {
		return nil
	}

	rangeToSearch := fmt.Sprintf("%s!A2:A", s.sheetName)
	keyResp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rangeToSearch).Do()
	if err != nil {
		return fmt.Errorf("查询Sheet数据失败: %v", err)
	}

	var rowIndex int
	found := false
	for i, row := range keyResp.Values {
		if len(row) > 0 && row[0] == license.Key {
			found = true
			rowIndex = i + 2 // +2因为A2开始且数组从0开始
			break
		}
	}

	values := [][]interface{}{s.rowFor(license)}

	if found {
		rangeData := fmt.Sprintf("%s!A%d:H%d", s.sheetName, rowIndex, rowIndex)
		_, err = s.service.Spreadsheets.Values.Update(
			s.spreadsheetID,
			rangeData,
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	} else {
		_, err = s.service.Spreadsheets.Values.Append(
			s.spreadsheetID,
			s.sheetName+"!A2:H",
			&sheets.ValueRange{Values: values},
		).ValueInputOption("USER_ENTERED").Do()
	}

	if err != nil {
		return fmt.Errorf("同步到Google Sheet失败: %v", err)
	}
	return nil
}

// BatchSyncLicenses 批量追加,用于一次性导出存量数据
func (s *SheetSyncService) BatchSyncLicenses(licenses []*model.License) error {
	if s == nil {
		return nil
	}

	var values [][]interface{}
	for _, license := range licenses {
		values = append(values, s.rowFor(license))
	}

	_, err := s.service.Spreadsheets.Values.Append(
		s.spreadsheetID,
		s.sheetName+"!A2:H",
		&sheets.ValueRange{Values: values},
	).ValueInputOption("USER_ENTERED").Do()
	return err
}
