package resources

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"composer/internal/credentials"
)

// RegistrySecretName is the name of the image-pull secret created in each
// playbook namespace.
const RegistrySecretName = "composer-registry-credential"

// RegistrySecretExists reports whether the registry credential secret is
// present in the given namespace.
func RegistrySecretExists(ctx context.Context, c client.Client, namespace string) (bool, error) {
	secret := &corev1.Secret{}
	err := c.Get(ctx, types.NamespacedName{Namespace: namespace, Name: RegistrySecretName}, secret)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get secret %s/%s: %w", namespace, RegistrySecretName, err)
	}
	return true, nil
}

// CreateRegistrySecret creates a kubernetes.io/dockerconfigjson secret
// carrying the registry credential, for use as an image-pull secret and by
// in-cluster build jobs pushing to the registry.
func CreateRegistrySecret(ctx context.Context, c client.Client, namespace string, credential credentials.Credential) error {
	dockerConfig, err := dockerConfigJSON(credential)
	if err != nil {
		return err
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: namespace,
			Name:      RegistrySecretName,
			Labels: map[string]string{
				ManagedByLabel: "composer",
			},
		},
		Type: corev1.SecretTypeDockerConfigJson,
		Data: map[string][]byte{
			corev1.DockerConfigJsonKey: dockerConfig,
		},
	}

	if err := c.Create(ctx, secret); err != nil {
		return fmt.Errorf("failed to create secret %s/%s: %w", namespace, RegistrySecretName, err)
	}
	return nil
}

// DeleteRegistrySecret removes the registry credential secret.
func DeleteRegistrySecret(ctx context.Context, c client.Client, namespace string) error {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: RegistrySecretName},
	}
	if err := c.Delete(ctx, secret); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete secret %s/%s: %w", namespace, RegistrySecretName, err)
	}
	return nil
}

// dockerConfigJSON serializes a credential into the .dockerconfigjson
// format understood by the kubelet and build tooling.
func dockerConfigJSON(credential credentials.Credential) ([]byte, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(credential.Username + ":" + credential.Password))

	cfg := map[string]interface{}{
		"auths": map[string]interface{}{
			credential.Host: map[string]string{
				"username": credential.Username,
				"password": credential.Password,
				"auth":     auth,
			},
		},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize docker config: %w", err)
	}
	return data, nil
}
