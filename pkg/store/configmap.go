// Copyright © 2024 The vjailbreak authors

package store

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	corev1 "k8s.io/api/core/v1"
	kerrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/util/retry"
)

const configMapAppLabel = "vim-orchestration"

// ConfigMapStore keeps one ConfigMap per kind, each record under its key.
type ConfigMapStore struct {
	client    kubernetes.Interface
	namespace string
	prefix    string
	timeout   time.Duration
}

func NewConfigMapStore(client kubernetes.Interface, namespace, prefix string) *ConfigMapStore {
	return &ConfigMapStore{
		client:    client,
		namespace: namespace,
		prefix:    prefix,
		timeout:   30 * time.Second,
	}
}

func (s *ConfigMapStore) name(kind string) string {
	return s.prefix + "-" + kind
}

func (s *ConfigMapStore) Save(kind, key string, obj interface{}) error {
	data, err := encode(kind, key, obj)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	cms := s.client.CoreV1().ConfigMaps(s.namespace)
	name := s.name(kind)

	err = retry.RetryOnConflict(retry.DefaultRetry, func() error {
		existing, err := cms.Get(ctx, name, metav1.GetOptions{})
		if err == nil {
			if existing.Data == nil {
				existing.Data = map[string]string{}
			}
			existing.Data[key] = string(data)
			_, err = cms.Update(ctx, existing, metav1.UpdateOptions{})
			return err
		} else if kerrors.IsNotFound(err) {
			cm := &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Name:      name,
					Namespace: s.namespace,
					Labels: map[string]string{
						"app": configMapAppLabel,
					},
				},
				Data: map[string]string{key: string(data)},
			}
			_, err = cms.Create(ctx, cm, metav1.CreateOptions{})
			return err
		}
		return err
	})
	return errors.Wrapf(err, "failed to save %s/%s", kind, key)
}

func (s *ConfigMapStore) LoadAll(kind string, fn LoadFunc) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	cm, err := s.client.CoreV1().ConfigMaps(s.namespace).Get(ctx, s.name(kind), metav1.GetOptions{})
	if kerrors.IsNotFound(err) {
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "failed to load %s", kind)
	}
	keys := make([]string, 0, len(cm.Data))
	for k := range cm.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, []byte(cm.Data[k])); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConfigMapStore) Close() error {
	return nil
}
