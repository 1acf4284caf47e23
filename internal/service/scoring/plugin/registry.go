package plugin

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"skypark/internal/pkg/logger"
	"skypark/internal/service/scoring/domain/port"
)

const (
	// 等待被占用的描述文件可读的总预算与重试间隔
	fileLockTimeout = 3 * time.Second
	fileLockBackoff = 50 * time.Millisecond

	// 文件系统事件的防抖窗口：一连串事件合并成一次 reload
	reloadDebounce = 2 * time.Second
)

// DeactivationNotifier 是注册表在 reload 后通知策略目录的出口：
// 某个扩展标识消失时，绑定它的策略需要被停用。通知是尽力而为的。
type DeactivationNotifier interface {
	ExtensionRemoved(ctx context.Context, pluginID string) error
}

// Registry 负责发现、加载、隔离与卸载外部积分扩展，
// 并在目录变化时于后台完成一致性重建。
//
// 并发纪律：plugins 表由单个互斥锁保护，读取和完整的 reload 流程
// 都在锁内进行，读者永远不会看到重建到一半的注册表。
type Registry struct {
	mu       sync.Mutex
	plugins  map[string]*Plugin
	dir      string
	watcher  *fsnotify.Watcher
	debounce *time.Timer
	notifier DeactivationNotifier
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]*Plugin)}
}

// SetNotifier 挂接停用通知的接收方。
// 注册表先于策略服务构造，所以通知方通过 setter 注入。
func (r *Registry) SetNotifier(n DeactivationNotifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = n
}

// Load 扫描目录并加载所有合格的扩展描述文件。
// 目录不存在时创建之。单个文件的任何失败（占用、解析、编译）
// 只会被记录并跳过，不会中断整个扫描。
func (r *Registry) Load(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dir = dir
	return r.loadLocked(dir)
}

// loadLocked 必须在持有 r.mu 的情况下调用。
func (r *Registry) loadLocked(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create plugin directory %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read plugin directory %s", dir)
	}

	// os.ReadDir 按文件名排序，标识冲突时后加载者覆盖前者
	for _, entry := range entries {
		if entry.IsDir() || !eligible(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		p, err := r.loadFile(path)
		if err != nil {
			logger.Logger.Warn().Err(err).Str("file", path).Msg("skipping extension module")
			continue
		}
		if prev, ok := r.plugins[p.ID()]; ok {
			logger.Logger.Warn().
				Str("id", p.ID()).
				Str("replaced", prev.Name()).
				Msg("duplicate extension identifier, last writer wins")
		}
		r.plugins[p.ID()] = p
		logger.Logger.Info().Str("id", p.ID()).Str("name", p.Name()).Msg("extension module loaded")
	}
	return nil
}

// eligible 判断文件是否是扩展描述文件。
func eligible(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// loadFile 完成单个模块的加载：等待独占读、复制进私有暂存目录、
// 在隔离环境中解析编译。暂存复制避免在源目录上持有文件句柄，
// 运营期间可以安全地整体替换模块文件。
func (r *Registry) loadFile(path string) (*Plugin, error) {
	staging, err := os.MkdirTemp("", "skypark-ext-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create staging directory")
	}
	// 程序编译完成后驻留内存，暂存文件即可丢弃
	defer os.RemoveAll(staging)

	staged := filepath.Join(staging, filepath.Base(path))
	if err := copyFileWithRetry(path, staged); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(staged)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read staged descriptor")
	}

	desc, err := ParseDescriptor(data)
	if err != nil {
		return nil, err
	}

	// 同目录的依赖文件（缺省配置）一并复制进暂存目录再读取
	if desc.DefaultConfigFile != "" {
		src := filepath.Join(filepath.Dir(path), filepath.Base(desc.DefaultConfigFile))
		dst := filepath.Join(staging, filepath.Base(desc.DefaultConfigFile))
		if err := copyFileWithRetry(src, dst); err != nil {
			return nil, errors.Wrapf(err, "extension %s: missing dependency file", desc.ID)
		}
		cfg, err := readJSONConfig(dst)
		if err != nil {
			return nil, errors.Wrapf(err, "extension %s: bad dependency file", desc.ID)
		}
		desc.DefaultConfig = cfg
	}

	return Compile(desc)
}

// copyFileWithRetry 带退避地等待源文件可读（最多 fileLockTimeout），
// 然后复制到目标路径。模块上传中途或被编辑器占用时会短暂不可读。
func copyFileWithRetry(src, dst string) error {
	deadline := time.Now().Add(fileLockTimeout)
	for {
		err := copyFile(src, dst)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.Wrapf(err, "file %s not readable within %v", src, fileLockTimeout)
		}
		time.Sleep(fileLockBackoff)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func readJSONConfig(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg map[string]interface{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch 先执行一次 Load，然后订阅目录的增删改/重命名事件；
// 每个事件都会重置同一个防抖定时器，到期触发 Reload。
// 作为后台任务运行，ctx 取消后返回。
func (r *Registry) Watch(ctx context.Context, dir string) error {
	if err := r.Load(dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create filesystem watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "failed to watch plugin directory %s", dir)
	}

	r.mu.Lock()
	r.watcher = watcher
	r.mu.Unlock()

	logger.Logger.Info().Str("dir", dir).Msg("watching extension directory")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				r.scheduleReload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Error().Err(err).Msg("filesystem watcher error")
		}
	}
}

// scheduleReload 重启单发防抖定时器：事件风暴合并成一次 reload。
func (r *Registry) scheduleReload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debounce != nil {
		r.debounce.Stop()
	}
	r.debounce = time.AfterFunc(reloadDebounce, func() {
		if err := r.Reload(); err != nil {
			logger.Logger.Error().Err(err).Msg("extension reload failed")
		}
	})
}

// Reload 在独占锁内完成：快照现有标识、整体卸载、重新加载、求差集。
// 对消失的标识，在锁外尽力通知策略目录做停用；通知失败只记录。
func (r *Registry) Reload() error {
	r.mu.Lock()
	before := make(map[string]struct{}, len(r.plugins))
	for id := range r.plugins {
		before[id] = struct{}{}
	}

	// 完全卸载：丢弃全部已编译程序，隔离上下文随之可回收
	r.plugins = make(map[string]*Plugin)
	err := r.loadLocked(r.dir)

	var removed []string
	for id := range before {
		if _, ok := r.plugins[id]; !ok {
			removed = append(removed, id)
		}
	}
	notifier := r.notifier
	r.mu.Unlock()

	if err != nil {
		return err
	}

	// 通知在锁外进行：接收方（策略目录）可能回头查注册表
	if notifier != nil {
		for _, id := range removed {
			if nerr := notifier.ExtensionRemoved(context.Background(), id); nerr != nil {
				logger.Logger.Error().Err(nerr).Str("id", id).Msg("failed to notify strategy catalog about removed extension")
			}
		}
	}
	logger.Logger.Info().Int("loaded", r.pluginCount()).Strs("removed", removed).Msg("extension registry reloaded")
	return nil
}

func (r *Registry) pluginCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.plugins)
}

// Get 按标识查找扩展；缺席返回 (nil, false) 而不是错误。
func (r *Registry) Get(id string) (port.Extension, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plugins[id]
	if !ok {
		return nil, false
	}
	return p, true
}

// All 返回当前注册的全部扩展。
func (r *Registry) All() []port.Extension {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]port.Extension, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	return out
}

// Shutdown 取消未触发的 reload、停止目录监听并卸载全部扩展。
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.debounce != nil {
		r.debounce.Stop()
		r.debounce = nil
	}
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
	r.plugins = make(map[string]*Plugin)
}
